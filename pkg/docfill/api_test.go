package docfill

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplateFromFile(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	path := filepath.Join(t.TempDir(), "template.docx")
	require.NoError(t, os.WriteFile(path, intakeTemplate(t), 0o644))

	tmpl, err := engine.LoadTemplate(path)
	require.NoError(t, err)

	locations := tmpl.Locations()
	require.Len(t, locations, 4)
	assert.Equal(t, "heading:1", locations[0].ID)
	assert.Equal(t, "Participant Name", locations[0].Label)
	assert.Equal(t, "table:1:col:2", locations[3].ID)

	_, err = engine.LoadTemplate(filepath.Join(t.TempDir(), "missing.docx"))
	assert.Error(t, err)
}

func TestLoadTemplateReader(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	tmpl, err := engine.LoadTemplateReader(bytes.NewReader(intakeTemplate(t)))
	require.NoError(t, err)
	assert.Len(t, tmpl.Locations(), 4)
}

func TestLoadSchemaFile(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	path := filepath.Join(t.TempDir(), "schema.json")
	content := `{"type":"object","properties":{"dob":{"type":"string","format":"date"}}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	schema, err := engine.LoadSchemaFile(path)
	require.NoError(t, err)

	field, ok := schema.FieldByPath("dob")
	require.True(t, ok)
	assert.Equal(t, FormatDate, field.Format)

	_, err = engine.LoadSchemaFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestGenerateNilArguments(t *testing.T) {
	t.Parallel()

	engine := testEngine()

	_, err := engine.Generate(nil, NewMappingSet(), nil)
	require.Error(t, err)

	// nil mapping means nothing to populate, not a failure
	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	result, err := engine.Generate(tmpl, nil, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
}

func TestGenerateToFile(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	tmpl, err := engine.LoadTemplateBytes(intakeTemplate(t))
	require.NoError(t, err)

	mapping := NewMappingSet()
	mapping.Set(ParseFieldPath("name"), "heading:1")

	path := filepath.Join(t.TempDir(), "out.docx")
	result, err := engine.GenerateToFile(tmpl, mapping, map[string]interface{}{"name": "Alice"}, path)
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, result.Output, written)
}

func TestLoadData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	content := `{"name":"Alice","steps":[{"step_type":"standard","label":"x"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	data, err := LoadData(path)
	require.NoError(t, err)
	assert.Equal(t, "Alice", data["name"])

	steps, ok := data["steps"].([]interface{})
	require.True(t, ok)
	assert.Len(t, steps, 1)

	_, err = LoadData(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadData(bad)
	assert.Error(t, err)
}

func TestBuildNestedData(t *testing.T) {
	t.Parallel()

	flat := map[string]string{
		"name":                     "Alice",
		"address.city":             "Springfield",
		"address.zip":              "12345",
		"participants[].phone_no":  "555-0100",
		"skipped":                  "",
	}

	data := BuildNestedData(flat)

	assert.Equal(t, "Alice", data["name"])

	address, ok := data["address"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Springfield", address["city"])
	assert.Equal(t, "12345", address["zip"])

	participants, ok := data["participants"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "555-0100", participants["phone_no"])

	_, present := data["skipped"]
	assert.False(t, present, "empty values are dropped")
}
