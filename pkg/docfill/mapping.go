package docfill

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// MappingEntry associates one schema field path with one template location
type MappingEntry struct {
	FieldPath  FieldPath
	LocationID string
}

// MappingSet is the ordered association set between field paths and
// locations. Each field path maps to at most one location; setting a path a
// second time overwrites the earlier association.
type MappingSet struct {
	entries []MappingEntry
	index   map[string]int // dot path -> position in entries
}

// NewMappingSet creates an empty mapping set
func NewMappingSet() *MappingSet {
	return &MappingSet{
		index: make(map[string]int),
	}
}

// Set associates a field path with a location id. Last write wins; remapping
// an existing path keeps its original position in the order.
func (m *MappingSet) Set(path FieldPath, locationID string) {
	key := path.String()
	if pos, ok := m.index[key]; ok {
		m.entries[pos].LocationID = locationID
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, MappingEntry{FieldPath: path, LocationID: locationID})
}

// Get returns the location id mapped to the given path, if any
func (m *MappingSet) Get(path FieldPath) (string, bool) {
	pos, ok := m.index[path.String()]
	if !ok {
		return "", false
	}
	return m.entries[pos].LocationID, true
}

// Entries returns the entries in insertion order
func (m *MappingSet) Entries() []MappingEntry {
	return m.entries
}

// Len returns the number of entries
func (m *MappingSet) Len() int {
	return len(m.entries)
}

// Validate reports schema fields without a mapping and mapped location ids
// absent from the detected location set (templates drift). It never fails:
// callers decide whether an incomplete mapping is acceptable for generation.
func (m *MappingSet) Validate(fields []SchemaField, locations []Location) []Warning {
	var warnings []Warning

	for _, field := range fields {
		if _, ok := m.index[field.Path.String()]; !ok {
			warnings = append(warnings, Warning{
				Kind:      WarnUnmappedField,
				FieldPath: field.Path.String(),
				Message:   "schema field has no mapping entry",
			})
		}
	}

	for _, entry := range m.entries {
		if _, ok := FindLocation(locations, entry.LocationID); !ok {
			warnings = append(warnings, Warning{
				Kind:       WarnStaleLocation,
				FieldPath:  entry.FieldPath.String(),
				LocationID: entry.LocationID,
				Message:    "mapped location not present in template",
			})
		}
	}

	return warnings
}

// mappingEntryJSON is the portable wire form of one entry
type mappingEntryJSON struct {
	FieldPath  string `json:"field_path"`
	LocationID string `json:"location_id"`
}

// MarshalJSON serializes the mapping set as an ordered list of entries
func (m *MappingSet) MarshalJSON() ([]byte, error) {
	out := make([]mappingEntryJSON, 0, len(m.entries))
	for _, entry := range m.entries {
		out = append(out, mappingEntryJSON{
			FieldPath:  entry.FieldPath.String(),
			LocationID: entry.LocationID,
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a mapping set from its portable form
func (m *MappingSet) UnmarshalJSON(data []byte) error {
	var raw []mappingEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse mapping: %w", err)
	}

	m.entries = nil
	m.index = make(map[string]int)
	for _, entry := range raw {
		m.Set(ParseFieldPath(entry.FieldPath), entry.LocationID)
	}
	return nil
}

// LoadMappingSet reads a mapping file in the portable JSON form
func LoadMappingSet(path string) (*MappingSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	m := NewMappingSet()
	if err := json.Unmarshal(content, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Save writes the mapping set to a file in the portable JSON form
func (m *MappingSet) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file: %w", err)
	}
	return nil
}

var nonKeyChars = regexp.MustCompile(`[^a-z0-9\s]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeHeader converts a table header label into a snake_case JSON key.
// "Phone No." becomes "phone_no", "Active Employee?" becomes
// "active_employee". This is a mapping-suggestion convenience only; the
// resolution engine always works from explicit field path to location id.
func NormalizeHeader(header string) string {
	if header == "" {
		return ""
	}
	text := strings.ToLower(header)
	text = nonKeyChars.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, "_")
	return strings.Trim(text, "_")
}

// SuggestMappings guesses entries by matching normalized table-column labels
// against the final key of each schema field. Only unambiguous matches are
// suggested; the caller reviews and edits the result before saving.
func SuggestMappings(fields []SchemaField, locations []Location) *MappingSet {
	byName := make(map[string][]SchemaField)
	for _, field := range fields {
		name := strings.TrimSuffix(field.Name, "[]")
		byName[name] = append(byName[name], field)
	}

	suggested := NewMappingSet()
	for _, loc := range locations {
		if loc.Kind != LocationTableColumn {
			continue
		}
		key := NormalizeHeader(loc.Label)
		candidates := byName[key]
		if len(candidates) != 1 {
			continue
		}
		suggested.Set(candidates[0].Path, loc.ID)
	}
	return suggested
}
