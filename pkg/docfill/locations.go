package docfill

import (
	"fmt"
	"regexp"
	"strings"
)

// LocationKind distinguishes the two addressable structures of a template
type LocationKind int

const (
	// LocationHeading is a paragraph styled as a heading
	LocationHeading LocationKind = iota
	// LocationTableColumn is a header-row cell of a table
	LocationTableColumn
)

func (k LocationKind) String() string {
	switch k {
	case LocationHeading:
		return "heading"
	case LocationTableColumn:
		return "table-column"
	default:
		return "unknown"
	}
}

// Location is an addressable point in a template eligible to receive a value.
// IDs are derived purely from structural position, so re-detecting the same
// template (or a revision with unchanged structure) yields the same ids.
type Location struct {
	ID      string
	Kind    LocationKind
	Label   string
	Ordinal int // 1-based position among locations of the same kind
	Table   int // 1-based table number, table columns only
	Column  int // 1-based header cell number, table columns only
}

// sectionMarkerRe matches the original template convention of numbering
// sections in heading text ("Section 01", "section 3").
var sectionMarkerRe = regexp.MustCompile(`(?i)section\s*(\d+)`)

// isHeading reports whether a paragraph acts as a heading: either styled with
// a Heading style, or carrying a section marker in its text. No assumption is
// made about the rest of the heading text.
func isHeading(p *Paragraph) bool {
	if strings.HasPrefix(strings.ToLower(p.StyleVal()), "heading") {
		return true
	}
	return sectionMarkerRe.MatchString(p.GetText())
}

// DetectLocations scans a document's structural elements in body order and
// returns every addressable location. A template with no headings and no
// tables yields an empty list, not an error.
func DetectLocations(doc *Document) []Location {
	var locations []Location
	if doc == nil || doc.Body == nil {
		return locations
	}

	headingOrdinal := 0
	tableOrdinal := 0
	columnOrdinal := 0

	for _, elem := range doc.Body.Elements {
		switch el := elem.(type) {
		case *Paragraph:
			text := strings.TrimSpace(el.GetText())
			if text == "" || !isHeading(el) {
				continue
			}
			headingOrdinal++
			locations = append(locations, Location{
				ID:      fmt.Sprintf("heading:%d", headingOrdinal),
				Kind:    LocationHeading,
				Label:   text,
				Ordinal: headingOrdinal,
			})
		case *Table:
			tableOrdinal++
			if len(el.Rows) == 0 {
				continue
			}
			// Header row cells become column locations. Merged cells repeat
			// their text across the row; only the first occurrence counts.
			seen := make(map[string]bool)
			for cellIdx, cell := range el.Rows[0].Cells {
				label := strings.TrimSpace(cell.GetText())
				if label == "" || seen[label] {
					continue
				}
				seen[label] = true
				columnOrdinal++
				locations = append(locations, Location{
					ID:      fmt.Sprintf("table:%d:col:%d", tableOrdinal, cellIdx+1),
					Kind:    LocationTableColumn,
					Label:   label,
					Ordinal: columnOrdinal,
					Table:   tableOrdinal,
					Column:  cellIdx + 1,
				})
			}
		}
	}

	return locations
}

// FindLocation returns the location with the given id, if present
func FindLocation(locations []Location, id string) (Location, bool) {
	for _, loc := range locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return Location{}, false
}
