// Package docfill populates structured DOCX templates from JSON data, using
// a schema that annotates field types and display formats and an explicit
// mapping between schema field paths and template locations.
//
// Basic usage:
//
//	engine := docfill.New()
//	tmpl, err := engine.LoadTemplate("template.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mapping, err := docfill.LoadMappingSet("mapping.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := engine.Generate(tmpl, mapping, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.docx", result.Output, 0o644)
//
// Locations are detected deterministically from the template's headings and
// table header rows, so a mapping file keeps working across template
// revisions that leave the structure unchanged.
package docfill

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
)

// Engine provides the main API for loading templates and generating
// populated documents.
type Engine struct {
	config *Config
	logger *Logger
	schema *Schema
}

// New creates a new engine with the global configuration
func New() *Engine {
	return &Engine{
		config: GetGlobalConfig(),
		logger: GetLogger(),
	}
}

// NewWithConfig creates a new engine with a custom configuration
func NewWithConfig(config *Config) *Engine {
	return &Engine{
		config: config,
		logger: NewLogger(os.Stderr, parseLogLevel(config.LogLevel)),
	}
}

// Config returns the engine's configuration
func (e *Engine) Config() *Config {
	return e.config
}

// SetSchema attaches a parsed schema to the engine. The schema contributes
// format annotations (date, email) during generation; without one every
// value renders through the plain stringification policy.
func (e *Engine) SetSchema(schema *Schema) {
	e.schema = schema
}

// LoadSchemaFile parses a schema file and attaches it to the engine
func (e *Engine) LoadSchemaFile(path string) (*Schema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	schema, err := ParseSchema(content)
	if err != nil {
		return nil, err
	}
	e.schema = schema
	return schema, nil
}

// Template is a loaded template document. The parsed document is kept for
// detection; generation always works on a fresh copy parsed from source, so
// a template can serve any number of Generate calls.
type Template struct {
	reader      *DocxReader
	document    *Document
	source      []byte
	documentXML []byte
}

// LoadTemplate loads a template from a DOCX file path
func (e *Engine) LoadTemplate(path string) (*Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return e.LoadTemplateBytes(content)
}

// LoadTemplateReader loads a template from an io.Reader
func (e *Engine) LoadTemplateReader(r io.Reader) (*Template, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return e.LoadTemplateBytes(content)
}

// LoadTemplateBytes loads a template from DOCX bytes
func (e *Engine) LoadTemplateBytes(content []byte) (*Template, error) {
	reader, err := NewDocxReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	docXML, err := reader.GetDocumentXML()
	if err != nil {
		return nil, NewTemplateStructureError("word/document.xml", "failed to extract", err)
	}

	doc, err := ParseDocument(bytes.NewReader(docXML))
	if err != nil {
		return nil, NewTemplateStructureError("word/document.xml", "failed to parse", err)
	}

	return &Template{
		reader:      reader,
		document:    doc,
		source:      content,
		documentXML: docXML,
	}, nil
}

// Locations runs detection over the loaded template. Detection is
// deterministic: the same template always yields the same id sequence.
func (t *Template) Locations() []Location {
	return DetectLocations(t.document)
}

// freshDocument parses a private copy of the document for one generation
// run, leaving the loaded template untouched.
func (t *Template) freshDocument() (*Document, error) {
	doc, err := ParseDocument(bytes.NewReader(t.documentXML))
	if err != nil {
		return nil, NewTemplateStructureError("word/document.xml", "failed to parse", err)
	}
	return doc, nil
}

// Generate populates a copy of the template with the given mapping and data
// and returns the output container plus collected warnings. Data issues
// never abort the run; schema, template and row-variant problems do.
func (e *Engine) Generate(tmpl *Template, mapping *MappingSet, data map[string]interface{}) (*Result, error) {
	if tmpl == nil {
		return nil, NewTemplateStructureError("", "nil template", nil)
	}
	if mapping == nil {
		mapping = NewMappingSet()
	}

	doc, err := tmpl.freshDocument()
	if err != nil {
		return nil, err
	}

	p, err := populateDocument(doc, mapping, e.schema, data, e.config, e.logger)
	if err != nil {
		return nil, err
	}

	if e.config.StrictMode {
		for _, w := range p.warnings.All() {
			if w.Kind == WarnStaleLocation {
				return nil, NewTemplateStructureError("", "strict mode: "+w.String(), nil)
			}
		}
	}

	documentXML, err := marshalDocument(doc)
	if err != nil {
		return nil, NewTemplateStructureError("word/document.xml", "failed to marshal", err)
	}

	output, err := writeDocx(tmpl.source, documentXML)
	if err != nil {
		return nil, err
	}

	e.logger.Info("generated document: %d fields updated, %d warnings", p.updated, p.warnings.Len())

	return &Result{
		Output:   output,
		Warnings: p.warnings.All(),
		Updated:  p.updated,
	}, nil
}

// GenerateToFile runs Generate and writes the output container to a file
func (e *Engine) GenerateToFile(tmpl *Template, mapping *MappingSet, data map[string]interface{}, path string) (*Result, error) {
	result, err := e.Generate(tmpl, mapping, data)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, result.Output, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}
	return result, nil
}

// LoadData reads a JSON data file into the record form Generate consumes
func LoadData(path string) (map[string]interface{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	return data, nil
}

// BuildNestedData reconstructs a nested data record from flat dot-path
// values, the inverse of path resolution. Empty values are skipped.
func BuildNestedData(flat map[string]string) map[string]interface{} {
	data := make(map[string]interface{})
	for path, value := range flat {
		if value == "" {
			continue
		}
		segments := ParseFieldPath(path)
		current := data
		for _, segment := range segments[:len(segments)-1] {
			key := strings.TrimSuffix(segment, "[]")
			next, ok := current[key].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				current[key] = next
			}
			current = next
		}
		current[strings.TrimSuffix(segments[len(segments)-1], "[]")] = value
	}
	return data
}
