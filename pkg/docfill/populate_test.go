package docfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// intakeTemplate is the shape used throughout these tests: two headings with
// empty content paragraphs under them, and a two-column progress table.
func intakeTemplate(t *testing.T) []byte {
	t.Helper()
	return buildTestDocx(t, wrapBody(
		headingXML(1, "Participant Name")+paraXML("")+
			headingXML(1, "Date of Birth")+paraXML("")+
			tableXML([]string{"Step", "Date"}),
	))
}

func intakeSchema(t *testing.T) *Schema {
	t.Helper()
	schema, err := ParseSchema([]byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"dob": {"type": "string", "format": "date"}
		}
	}`))
	require.NoError(t, err)
	return schema
}

func paragraphTexts(doc *Document) []string {
	var texts []string
	for _, p := range doc.Paragraphs() {
		texts = append(texts, p.GetText())
	}
	return texts
}

func TestGenerateEndToEnd(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	engine.SetSchema(intakeSchema(t))

	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("name"), "heading:1")
	mapping.Set(ParseFieldPath("dob"), "heading:2")
	mapping.Set(ParseFieldPath("steps"), "table:1:col:1")

	data := map[string]interface{}{
		"name": "Alice",
		"dob":  "2024-03-15",
		"steps": []interface{}{
			map[string]interface{}{"step_type": "standard", "label": "Collect documents", "value": "done"},
			map[string]interface{}{"step_type": "subtitle", "label": "Phase Two"},
		},
	}

	result, err := engine.Generate(tmpl, mapping, data)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 4, result.Updated)

	doc := parseOutputDocument(t, result.Output)

	assert.Equal(t, []string{
		"Participant Name",
		"Alice",
		"Date of Birth",
		"March 15, 2024",
	}, paragraphTexts(doc))

	tables := doc.Tables()
	require.Len(t, tables, 1)
	rows := tables[0].Rows
	require.Len(t, rows, 3, "header plus one row per record")

	// standard row: label and value cells
	require.Len(t, rows[1].Cells, 2)
	assert.Equal(t, "Collect documents", rows[1].Cells[0].GetText())
	assert.Equal(t, "done", rows[1].Cells[1].GetText())

	// subtitle row: a single cell spanning the full table width
	require.Len(t, rows[2].Cells, 1)
	assert.Equal(t, "Phase Two", rows[2].Cells[0].GetText())
	require.NotNil(t, rows[2].Cells[0].Properties)
	require.NotNil(t, rows[2].Cells[0].Properties.GridSpan)
	assert.Equal(t, 2, rows[2].Cells[0].Properties.GridSpan.Val)
}

func TestGenerateLeavesTemplateUntouched(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("steps"), "table:1:col:1")

	data := map[string]interface{}{
		"steps": []interface{}{
			map[string]interface{}{"step_type": "standard", "label": "one"},
			map[string]interface{}{"step_type": "standard", "label": "two"},
			map[string]interface{}{"step_type": "standard", "label": "three"},
		},
	}

	for i := 0; i < 3; i++ {
		result, err := engine.Generate(tmpl, mapping, data)
		require.NoError(t, err)

		doc := parseOutputDocument(t, result.Output)
		tables := doc.Tables()
		require.Len(t, tables, 1)
		assert.Len(t, tables[0].Rows, 4, "run %d must not accumulate rows", i)
	}
}

func TestGenerateDateTimeRow(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("steps"), "table:1:col:1")

	data := map[string]interface{}{
		"steps": []interface{}{
			map[string]interface{}{"step_type": "datetime", "label": "Signed", "date_completed": "2024-03-15"},
		},
	}

	result, err := engine.Generate(tmpl, mapping, data)
	require.NoError(t, err)

	doc := parseOutputDocument(t, result.Output)
	rows := doc.Tables()[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Signed", rows[1].Cells[0].GetText())
	assert.Equal(t, "March 15, 2024", rows[1].Cells[1].GetText())
}

func TestGenerateUnknownVariantAbortsWholeTable(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("steps"), "table:1:col:1")

	bad := map[string]interface{}{
		"steps": []interface{}{
			map[string]interface{}{"step_type": "standard", "label": "fine"},
			map[string]interface{}{"step_type": "Bogus", "label": "broken"},
		},
	}

	_, err = engine.Generate(tmpl, mapping, bad)
	require.Error(t, err)

	var variantErr *UnknownVariantError
	require.ErrorAs(t, err, &variantErr)
	assert.Equal(t, "Bogus", variantErr.Value)
	assert.Equal(t, 1, variantErr.Index)

	// the failed run left nothing behind: a clean run over the same template
	// produces exactly the rows of its own records
	good := map[string]interface{}{
		"steps": []interface{}{
			map[string]interface{}{"step_type": "standard", "label": "fine"},
		},
	}
	result, err := engine.Generate(tmpl, mapping, good)
	require.NoError(t, err)

	doc := parseOutputDocument(t, result.Output)
	assert.Len(t, doc.Tables()[0].Rows, 2)
}

func TestGenerateMissingDataRendersBlank(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("name"), "heading:1")

	result, err := engine.Generate(tmpl, mapping, map[string]interface{}{})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarnMissingData, result.Warnings[0].Kind)
	assert.Equal(t, "name", result.Warnings[0].FieldPath)

	doc := parseOutputDocument(t, result.Output)
	texts := paragraphTexts(doc)
	assert.Equal(t, "Participant Name", texts[0])
	assert.Equal(t, "", texts[1])
}

func TestGenerateStaleLocationWarns(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("name"), "heading:9")

	result, err := engine.Generate(tmpl, mapping, map[string]interface{}{"name": "Alice"})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarnStaleLocation, result.Warnings[0].Kind)
	assert.Equal(t, "heading:9", result.Warnings[0].LocationID)
	assert.Equal(t, 0, result.Updated)
}

func TestGenerateStrictMode(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	config.LogLevel = "off"
	config.StrictMode = true
	engine := NewWithConfig(config)

	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("name"), "heading:9")

	_, err = engine.Generate(tmpl, mapping, map[string]interface{}{"name": "Alice"})
	require.Error(t, err)

	var tmplErr *TemplateStructureError
	assert.ErrorAs(t, err, &tmplErr)
}

func TestGenerateUnmappedListing(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("name"), "heading:1")

	data := map[string]interface{}{
		"name":     "Alice",
		"phone_no": "555-0100",
		"address": map[string]interface{}{
			"city": "Springfield",
		},
	}

	result, err := engine.Generate(tmpl, mapping, data)
	require.NoError(t, err)

	doc := parseOutputDocument(t, result.Output)
	texts := paragraphTexts(doc)
	require.Contains(t, texts, "Unmapped data")
	assert.Contains(t, texts, "phone_no: 555-0100")
	assert.Contains(t, texts, "address.city: Springfield")
	assert.NotContains(t, texts, "name: Alice", "mapped values stay out of the listing")
}

func TestGenerateUnmappedListingDisabled(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	config.LogLevel = "off"
	config.IncludeUnmapped = false
	engine := NewWithConfig(config)

	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("name"), "heading:1")

	result, err := engine.Generate(tmpl, mapping, map[string]interface{}{
		"name":     "Alice",
		"phone_no": "555-0100",
	})
	require.NoError(t, err)

	doc := parseOutputDocument(t, result.Output)
	assert.NotContains(t, paragraphTexts(doc), "Unmapped data")
}

func TestGenerateStaticTableCell(t *testing.T) {
	t.Parallel()

	schema, err := ParseSchema([]byte(`{
		"type": "object",
		"properties": {
			"email": {"type": "string", "format": "email"}
		}
	}`))
	require.NoError(t, err)

	engine := testEngine()
	engine.SetSchema(schema)

	docx := buildTestDocx(t, wrapBody(tableXML([]string{"Name", "Email"})))
	tmpl, err := engine.LoadTemplateBytes(docx)
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("email"), "table:1:col:2")

	result, err := engine.Generate(tmpl, mapping, map[string]interface{}{"email": "alice@example.com"})
	require.NoError(t, err)

	doc := parseOutputDocument(t, result.Output)
	rows := doc.Tables()[0].Rows
	require.Len(t, rows, 2, "a data row is appended under the header")
	require.Len(t, rows[1].Cells, 2)
	assert.Equal(t, "✉ alice@example.com", rows[1].Cells[1].GetText())
}

func TestGenerateInlineMarkup(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("name"), "heading:1")

	result, err := engine.Generate(tmpl, mapping, map[string]interface{}{
		"name": "see <b>bold</b> text",
	})
	require.NoError(t, err)

	doc := parseOutputDocument(t, result.Output)
	paras := doc.Paragraphs()
	require.GreaterOrEqual(t, len(paras), 2)
	content := paras[1]

	assert.Equal(t, "see bold text", content.GetText())
	require.Len(t, content.Runs, 3)
	require.NotNil(t, content.Runs[1].Properties)
	assert.NotNil(t, content.Runs[1].Properties.Bold)
	assert.Nil(t, content.Runs[0].Properties)
}

func TestGenerateDynamicTableFillsOnce(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	// two array mappings targeting columns of the same table
	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("steps"), "table:1:col:1")
	mapping.Set(ParseFieldPath("extras"), "table:1:col:2")

	data := map[string]interface{}{
		"steps": []interface{}{
			map[string]interface{}{"step_type": "standard", "label": "only"},
		},
		"extras": []interface{}{
			map[string]interface{}{"step_type": "standard", "label": "a"},
			map[string]interface{}{"step_type": "standard", "label": "b"},
		},
	}

	result, err := engine.Generate(tmpl, mapping, data)
	require.NoError(t, err)

	doc := parseOutputDocument(t, result.Output)
	assert.Len(t, doc.Tables()[0].Rows, 2, "the first array mapping wins the table")
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	data := map[string]interface{}{
		"name": "Alice",
		"address": map[string]interface{}{
			"city": "Springfield",
		},
		"participants": []interface{}{
			map[string]interface{}{"phone_no": "555-0100"},
			map[string]interface{}{"phone_no": "555-0199"},
		},
		"empty": []interface{}{},
	}

	tests := []struct {
		path      string
		want      interface{}
		wantFound bool
	}{
		{"name", "Alice", true},
		{"address.city", "Springfield", true},
		{"participants[].phone_no", "555-0100", true},
		{"participants.phone_no", "555-0100", true},
		{"empty[].x", nil, false},
		{"address.zip", nil, false},
		{"missing", nil, false},
		{"name.sub", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, found := resolvePath(data, ParseFieldPath(tt.path))
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
