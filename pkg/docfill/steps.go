package docfill

import (
	"strings"
)

// StepKind is the closed set of row variants a dynamic table can hold.
// Adding a variant is a deliberate extension point: every switch over
// StepKind in this file must be extended with it.
type StepKind int

const (
	// StepStandard renders label and value in two cells
	StepStandard StepKind = iota
	// StepDateTime renders label and a date-formatted value
	StepDateTime
	// StepSubtitle renders a single merged-width cell with no value
	StepSubtitle
)

func (k StepKind) String() string {
	switch k {
	case StepStandard:
		return "standard"
	case StepDateTime:
		return "datetime"
	case StepSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// Step is one classified record of a dynamic table, alive for a single
// table-rendering pass.
type Step struct {
	Kind  StepKind
	Label string
	Value string // raw value; DateTime holds the ISO-8601 timestamp
}

// discriminatorKeys are tried in order when classifying a record
var discriminatorKeys = []string{"step_type", "kind", "type"}

// labelKeys are tried in order when extracting the row label
var labelKeys = []string{"label", "description", "title"}

// valueKeys are tried in order when extracting the row value
var valueKeys = []string{"value", "date_completed", "timestamp"}

// ResolveStep classifies one data record into a row variant. The
// discriminator is matched case-insensitively; a missing or unrecognized
// discriminator is a hard error since no default layout exists for it.
func ResolveStep(record map[string]interface{}, index int) (Step, error) {
	var kindValue string
	for _, key := range discriminatorKeys {
		if v, ok := record[key].(string); ok && v != "" {
			kindValue = v
			break
		}
	}

	var kind StepKind
	switch strings.ToLower(kindValue) {
	case "standard":
		kind = StepStandard
	case "datetime":
		kind = StepDateTime
	case "subtitle":
		kind = StepSubtitle
	default:
		return Step{}, NewUnknownVariantError(kindValue, index)
	}

	step := Step{Kind: kind}
	for _, key := range labelKeys {
		if v, ok := record[key]; ok {
			step.Label = stringify(v)
			break
		}
	}
	for _, key := range valueKeys {
		if v, ok := record[key]; ok {
			step.Value = stringify(v)
			break
		}
	}

	return step, nil
}

// Row renders the step into a table row with the given column count. The
// layout differs structurally per variant, so dispatch is exhaustive here
// rather than spread over the populator.
func (s Step) Row(columns int, dateDisplay string) TableRow {
	if columns < 1 {
		columns = 1
	}

	switch s.Kind {
	case StepStandard:
		return dataRow(columns, s.Label, s.Value)
	case StepDateTime:
		return dataRow(columns, s.Label, formatValue(s.Value, FormatDate, dateDisplay))
	case StepSubtitle:
		// One cell spanning the full table width, no value cell at all
		cell := newCell(s.Label)
		if columns > 1 {
			cell.Properties = &TableCellProperties{GridSpan: &GridSpan{Val: columns}}
		}
		return TableRow{Cells: []TableCell{cell}}
	default:
		// Unreachable: ResolveStep only produces the kinds above
		return dataRow(columns, s.Label, s.Value)
	}
}

// dataRow builds a row with the given leading cell texts, padded with empty
// cells up to the table width.
func dataRow(columns int, texts ...string) TableRow {
	cells := make([]TableCell, 0, columns)
	for _, text := range texts {
		if len(cells) == columns {
			break
		}
		cells = append(cells, newCell(text))
	}
	for len(cells) < columns {
		cells = append(cells, newCell(""))
	}
	return TableRow{Cells: cells}
}

func newCell(text string) TableCell {
	var para Paragraph
	if text != "" {
		para.Runs = []Run{{Text: &Text{Content: text, Space: "preserve"}}}
	}
	return TableCell{Paragraphs: []Paragraph{para}}
}
