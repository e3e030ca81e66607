package docfill

import (
	"sort"
	"strings"
)

// Result carries the populated document container and everything non-fatal
// that happened along the way.
type Result struct {
	Output   []byte
	Warnings []Warning
	Updated  int
}

// populator holds the state of one generation run over a private copy of
// the template document.
type populator struct {
	doc       *Document
	locations []Location
	mapping   *MappingSet
	schema    *Schema
	data      map[string]interface{}
	config    *Config
	logger    *Logger

	warnings WarningList
	updated  int
	// tables already filled by a dynamic step mapping; a second array
	// mapped into the same table would double its rows
	dynamicDone map[int]bool
}

// populateDocument applies a mapping to a document copy in place. The schema
// is optional and only contributes format annotations.
func populateDocument(doc *Document, mapping *MappingSet, schema *Schema, data map[string]interface{}, config *Config, logger *Logger) (*populator, error) {
	p := &populator{
		doc:         doc,
		locations:   DetectLocations(doc),
		mapping:     mapping,
		schema:      schema,
		data:        data,
		config:      config,
		logger:      logger,
		dynamicDone: make(map[int]bool),
	}

	for _, entry := range mapping.Entries() {
		if err := p.applyEntry(entry); err != nil {
			return nil, err
		}
	}

	if config.IncludeUnmapped {
		p.appendUnmappedListing()
	}

	return p, nil
}

func (p *populator) applyEntry(entry MappingEntry) error {
	loc, ok := FindLocation(p.locations, entry.LocationID)
	if !ok {
		p.warnings.Add(Warning{
			Kind:       WarnStaleLocation,
			FieldPath:  entry.FieldPath.String(),
			LocationID: entry.LocationID,
			Message:    "mapped location not present in template",
		})
		return nil
	}

	value, found := resolvePath(p.data, entry.FieldPath)
	if !found {
		p.warnings.Add(Warning{
			Kind:       WarnMissingData,
			FieldPath:  entry.FieldPath.String(),
			LocationID: entry.LocationID,
			Message:    "no value in data, rendered blank",
		})
	}

	format := p.fieldFormat(entry.FieldPath)

	switch loc.Kind {
	case LocationHeading:
		p.setHeadingContent(loc, value, format)
		return nil
	case LocationTableColumn:
		if records, ok := value.([]interface{}); ok {
			return p.fillStepTable(loc, records)
		}
		p.setStaticCell(loc, value, format)
		return nil
	default:
		return nil
	}
}

// fieldFormat looks up the display annotation for a path, when a schema was
// supplied for the run
func (p *populator) fieldFormat(path FieldPath) FieldFormat {
	if p.schema == nil {
		return FormatNone
	}
	if field, ok := p.schema.FieldByPath(path.String()); ok {
		return field.Format
	}
	return FormatNone
}

// resolvePath traverses nested maps along the field path. Array markers and
// intermediate arrays take the first element, matching how scalar fields
// inside record lists are addressed. Missing keys report not-found instead
// of an error so optional fields stay optional.
func resolvePath(data map[string]interface{}, path FieldPath) (interface{}, bool) {
	var current interface{} = data
	for _, segment := range path {
		key := strings.TrimSuffix(segment, "[]")

		if list, ok := current.([]interface{}); ok {
			if len(list) == 0 {
				return nil, false
			}
			current = list[0]
		}

		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// setHeadingContent writes the display form of a value into the content slot
// directly under the heading: the first non-heading paragraph that follows
// it. When the heading has no such paragraph, one is inserted.
func (p *populator) setHeadingContent(loc Location, value interface{}, format FieldFormat) {
	display := formatValue(value, format, p.config.DateDisplay)

	headingOrdinal := 0
	for i, elem := range p.doc.Body.Elements {
		para, ok := elem.(*Paragraph)
		if !ok || strings.TrimSpace(para.GetText()) == "" || !isHeading(para) {
			continue
		}
		headingOrdinal++
		if headingOrdinal != loc.Ordinal {
			continue
		}

		if slot := p.contentSlotAfter(i); slot != nil {
			p.setParagraphValue(slot, display)
		} else {
			inserted := &Paragraph{}
			p.setParagraphValue(inserted, display)
			p.doc.Body.Elements = append(p.doc.Body.Elements[:i+1],
				append([]BodyElement{inserted}, p.doc.Body.Elements[i+1:]...)...)
		}
		p.updated++
		return
	}
}

// contentSlotAfter returns the first paragraph after element i that is not
// itself a heading, stopping at the next heading or table.
func (p *populator) contentSlotAfter(i int) *Paragraph {
	for _, elem := range p.doc.Body.Elements[i+1:] {
		switch el := elem.(type) {
		case *Paragraph:
			if isHeading(el) {
				return nil
			}
			return el
		case *Table:
			return nil
		}
	}
	return nil
}

// setParagraphValue writes a display value into a paragraph, honoring inline
// markup when present and preserving the template run formatting otherwise.
func (p *populator) setParagraphValue(para *Paragraph, display string) {
	if hasInlineMarkup(display) {
		var base *RunProperties
		if len(para.Runs) > 0 {
			base = para.Runs[0].Properties
		}
		para.Runs = markupToRuns(display, base)
		return
	}
	para.SetText(display)
}

// setStaticCell writes a scalar value into the first data-row cell under the
// mapped column, appending a data row when the table has only its header.
func (p *populator) setStaticCell(loc Location, value interface{}, format FieldFormat) {
	tables := p.doc.Tables()
	if loc.Table < 1 || loc.Table > len(tables) {
		return
	}
	table := tables[loc.Table-1]

	if len(table.Rows) < 2 {
		table.Rows = append(table.Rows, dataRow(table.ColumnCount()))
	}

	row := &table.Rows[1]
	col := loc.Column - 1
	for len(row.Cells) <= col {
		row.Cells = append(row.Cells, newCell(""))
	}

	row.Cells[col].SetText(formatValue(value, format, p.config.DateDisplay))
	p.updated++
}

// fillStepTable appends one row per record to the dynamic table, in input
// order. An unknown variant aborts the whole table before any row is
// appended, so a failed run never leaves partial rows behind.
func (p *populator) fillStepTable(loc Location, records []interface{}) error {
	if p.dynamicDone[loc.Table] {
		return nil
	}

	tables := p.doc.Tables()
	if loc.Table < 1 || loc.Table > len(tables) {
		return nil
	}
	table := tables[loc.Table-1]
	columns := table.ColumnCount()

	rows := make([]TableRow, 0, len(records))
	for i, record := range records {
		obj, ok := record.(map[string]interface{})
		if !ok {
			return NewUnknownVariantError("", i)
		}
		step, err := ResolveStep(obj, i)
		if err != nil {
			return err
		}
		rows = append(rows, step.Row(columns, p.config.DateDisplay))
	}

	table.Rows = append(table.Rows, rows...)
	p.dynamicDone[loc.Table] = true
	p.updated += len(rows)
	p.logger.Debug("filled dynamic table %d with %d rows", loc.Table, len(rows))
	return nil
}

// appendUnmappedListing appends a readable listing of every data value that
// no mapping entry covers, so unmapped structured data stays visible instead
// of being silently dropped.
func (p *populator) appendUnmappedListing() {
	mappedPrefixes := make(map[string]bool)
	for _, entry := range p.mapping.Entries() {
		mappedPrefixes[strippedPath(entry.FieldPath)] = true
	}

	var leaves []string
	collectUnmappedLeaves(p.data, nil, mappedPrefixes, &leaves)
	if len(leaves) == 0 {
		return
	}
	sort.Strings(leaves)

	title := &Paragraph{
		Properties: &ParagraphProperties{Style: &Style{Val: "Heading1"}},
	}
	title.SetText("Unmapped data")
	p.doc.Body.Elements = append(p.doc.Body.Elements, title)

	for _, line := range leaves {
		para := &Paragraph{}
		para.SetText(line)
		p.doc.Body.Elements = append(p.doc.Body.Elements, para)
	}
}

// strippedPath is the dot path with array markers removed, used to compare
// mapping paths against concrete data paths
func strippedPath(path FieldPath) string {
	parts := make([]string, len(path))
	for i, seg := range path {
		parts[i] = strings.TrimSuffix(seg, "[]")
	}
	return strings.Join(parts, ".")
}

// collectUnmappedLeaves walks the data and records "path: value" lines for
// leaves not covered by any mapping path prefix.
func collectUnmappedLeaves(value interface{}, path FieldPath, mapped map[string]bool, out *[]string) {
	dotPath := strippedPath(path)
	if mapped[dotPath] {
		return
	}

	// Record lists are inspected through their first element, mirroring how
	// scalar paths address them
	if list, ok := value.([]interface{}); ok && len(list) > 0 {
		if first, isMap := list[0].(map[string]interface{}); isMap {
			collectUnmappedLeaves(first, path, mapped, out)
			return
		}
	}

	if obj, ok := value.(map[string]interface{}); ok && len(path) < 8 {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectUnmappedLeaves(obj[k], path.Child(k), mapped, out)
		}
		return
	}

	if len(path) == 0 {
		return
	}
	*out = append(*out, dotPath+": "+stringify(value))
}
