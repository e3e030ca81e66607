package docfill

import (
	"html"
	"regexp"
)

// inlineTagRe matches supported inline markup tags in field values
var inlineTagRe = regexp.MustCompile(`(?i)<(/?)(b|strong|i|em|u|br)\s*/?>`)

// anyTagRe is a cheap check for markup presence before parsing
var anyTagRe = regexp.MustCompile(`<[^>]+>`)

// hasInlineMarkup reports whether a value carries markup worth parsing
func hasInlineMarkup(s string) bool {
	return anyTagRe.MatchString(s) && inlineTagRe.MatchString(s)
}

// markupToRuns converts a value with inline markup (<b>, <strong>, <i>,
// <em>, <u>, <br>) into formatted runs. Formatting state toggles as tags
// open and close; unknown tags pass through as literal text. The base run
// properties keep the template's font and size on every generated run.
func markupToRuns(s string, base *RunProperties) []Run {
	var runs []Run
	bold, italic, underline := false, false, false

	appendText := func(text string) {
		if text == "" {
			return
		}
		props := cloneRunProperties(base)
		if bold {
			props.Bold = &Empty{}
		}
		if italic {
			props.Italic = &Empty{}
		}
		if underline {
			props.Underline = &UnderlineStyle{Val: "single"}
		}
		runs = append(runs, Run{
			Properties: propsOrNil(props),
			Text:       &Text{Content: html.UnescapeString(text), Space: "preserve"},
		})
	}

	lastEnd := 0
	for _, match := range inlineTagRe.FindAllStringSubmatchIndex(s, -1) {
		appendText(s[lastEnd:match[0]])

		closing := s[match[2]:match[3]] == "/"
		tag := lowerASCII(s[match[4]:match[5]])

		switch tag {
		case "br":
			runs = append(runs, Run{Break: &Break{}})
		case "b", "strong":
			bold = !closing
		case "i", "em":
			italic = !closing
		case "u":
			underline = !closing
		}

		lastEnd = match[1]
	}
	appendText(s[lastEnd:])

	// A value of nothing but tags still needs a text run so the paragraph
	// is not empty
	if len(runs) == 0 {
		runs = append(runs, Run{
			Properties: base,
			Text:       &Text{Content: html.UnescapeString(s), Space: "preserve"},
		})
	}

	return runs
}

// cloneRunProperties copies the template formatting so toggles never mutate
// the base properties shared across runs.
func cloneRunProperties(base *RunProperties) *RunProperties {
	if base == nil {
		return &RunProperties{}
	}
	clone := *base
	return &clone
}

func propsOrNil(props *RunProperties) *RunProperties {
	if props == nil {
		return nil
	}
	if props.Bold == nil && props.Italic == nil && props.Underline == nil &&
		props.Color == nil && props.Size == nil && props.Font == nil {
		return nil
	}
	return props
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
