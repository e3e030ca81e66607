package docfill

import (
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// FieldType is the primitive type of a schema field
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
)

// FieldFormat is an optional display annotation on string fields
type FieldFormat string

const (
	FormatNone  FieldFormat = ""
	FormatDate  FieldFormat = "date"
	FormatEmail FieldFormat = "email"
)

// FieldPath is an ordered sequence of keys identifying a value's position
// within a nested JSON data record. A segment carrying the "[]" suffix
// addresses the elements of an array.
type FieldPath []string

// ParseFieldPath splits a dot-separated path string into its segments
func ParseFieldPath(s string) FieldPath {
	if s == "" {
		return nil
	}
	return FieldPath(strings.Split(s, "."))
}

// String returns the dot-separated form of the path
func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

// Child returns a new path extended by one segment
func (p FieldPath) Child(key string) FieldPath {
	child := make(FieldPath, 0, len(p)+1)
	child = append(child, p...)
	return append(child, key)
}

// Equal reports whether two paths have identical segments
func (p FieldPath) Equal(other FieldPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// SchemaField describes one addressable leaf field of the schema
type SchemaField struct {
	Path   FieldPath
	Name   string // the final key, as shown in mapping UIs
	Group  string // top-level property the field sits under
	Type   FieldType
	Format FieldFormat
}

// Schema is the parsed, immutable field set of one schema file
type Schema struct {
	Fields []SchemaField
}

// FieldByPath returns the field with the given dot-separated path, if any
func (s *Schema) FieldByPath(path string) (SchemaField, bool) {
	for _, f := range s.Fields {
		if f.Path.String() == path {
			return f, true
		}
	}
	return SchemaField{}, false
}

// ParseSchema parses a JSON schema document into its ordered field set.
// The supported subset mirrors what schema generators emit for plain data
// models: properties, required, type, format, items, $defs/definitions $ref,
// and anyOf/allOf/oneOf combinators with null branches skipped.
func ParseSchema(data []byte) (*Schema, error) {
	var root map[string]interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, NewSchemaError("", "malformed JSON", err)
	}

	walker := &schemaWalker{root: root}
	fields, err := walker.extract(root, nil, "", nil)
	if err != nil {
		return nil, err
	}

	return &Schema{Fields: fields}, nil
}

// schemaWalker carries the root schema for $ref resolution
type schemaWalker struct {
	root map[string]interface{}
}

// extract collects leaf fields under one schema node. refChain tracks the
// $ref strings currently being expanded so cycles fail instead of recursing.
func (w *schemaWalker) extract(node map[string]interface{}, prefix FieldPath, group string, refChain []string) ([]SchemaField, error) {
	props, ok := node["properties"].(map[string]interface{})
	if !ok {
		return nil, nil
	}

	requiredSet := make(map[string]bool)
	if required, ok := node["required"].([]interface{}); ok {
		for _, r := range required {
			if name, ok := r.(string); ok {
				requiredSet[name] = true
			}
		}
	}
	// Empty required set means every property is in scope
	includeAll := len(requiredSet) == 0

	// Map iteration order is random; sort keys so the field set is stable
	// across runs (mapping files diff cleanly).
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []SchemaField
	for _, k := range keys {
		if !includeAll && !requiredSet[k] {
			continue
		}

		prop, ok := props[k].(map[string]interface{})
		if !ok {
			return nil, NewSchemaError(prefix.Child(k).String(), "property is not an object", nil)
		}

		path := prefix.Child(k)
		currentGroup := group
		if currentGroup == "" {
			currentGroup = k
		}

		sub, err := w.extractProperty(k, prop, path, currentGroup, refChain)
		if err != nil {
			return nil, err
		}
		fields = append(fields, sub...)
	}

	return fields, nil
}

func (w *schemaWalker) extractProperty(key string, prop map[string]interface{}, path FieldPath, group string, refChain []string) ([]SchemaField, error) {
	// anyOf/allOf/oneOf: follow every non-null branch
	if combo := comboBranches(prop); combo != nil {
		var fields []SchemaField
		for _, option := range combo {
			opt, ok := option.(map[string]interface{})
			if !ok {
				continue
			}
			if t, _ := opt["type"].(string); t == "null" {
				continue
			}
			sub, err := w.extractProperty(key, opt, path, group, refChain)
			if err != nil {
				return nil, err
			}
			fields = append(fields, sub...)
		}
		return fields, nil
	}

	if ref, ok := prop["$ref"].(string); ok {
		resolved, chain, err := w.resolveRef(ref, path, refChain)
		if err != nil {
			return nil, err
		}
		return w.extract(resolved, path, group, chain)
	}

	typeVal, hasType := prop["type"].(string)
	if !hasType {
		return nil, NewSchemaError(path.String(), "missing type keyword", nil)
	}

	switch typeVal {
	case "object":
		return w.extract(prop, path, group, refChain)
	case "array":
		items, ok := prop["items"].(map[string]interface{})
		if !ok {
			// Array without item schema stays addressable as a whole
			return []SchemaField{{Path: path, Name: key, Group: group, Type: TypeArray}}, nil
		}
		arrayPath := append(FieldPath{}, path...)
		arrayPath[len(arrayPath)-1] += "[]"
		if ref, ok := items["$ref"].(string); ok {
			resolved, chain, err := w.resolveRef(ref, path, refChain)
			if err != nil {
				return nil, err
			}
			return w.extract(resolved, arrayPath, group, chain)
		}
		if t, _ := items["type"].(string); t == "object" {
			return w.extract(items, arrayPath, group, refChain)
		}
		// Array of scalars
		return []SchemaField{{Path: path, Name: key, Group: group, Type: TypeArray}}, nil
	case "string":
		return []SchemaField{{Path: path, Name: key, Group: group, Type: TypeString, Format: recognizeFormat(prop)}}, nil
	case "number", "integer":
		return []SchemaField{{Path: path, Name: key, Group: group, Type: TypeNumber}}, nil
	case "boolean":
		return []SchemaField{{Path: path, Name: key, Group: group, Type: TypeBoolean}}, nil
	default:
		return nil, NewSchemaError(path.String(), "unsupported type keyword '"+typeVal+"'", nil)
	}
}

// recognizeFormat maps the format keyword to a known display annotation.
// Unrecognized format strings are accepted and treated as none, so schemas
// from newer generators keep working.
func recognizeFormat(prop map[string]interface{}) FieldFormat {
	format, _ := prop["format"].(string)
	switch format {
	case "date":
		return FormatDate
	case "email":
		return FormatEmail
	default:
		return FormatNone
	}
}

func comboBranches(prop map[string]interface{}) []interface{} {
	for _, key := range []string{"anyOf", "allOf", "oneOf"} {
		if combo, ok := prop[key].([]interface{}); ok {
			return combo
		}
	}
	return nil
}

// resolveRef resolves a local $ref pointer against the root schema
func (w *schemaWalker) resolveRef(ref string, path FieldPath, refChain []string) (map[string]interface{}, []string, error) {
	for _, seen := range refChain {
		if seen == ref {
			return nil, nil, NewSchemaError(path.String(), "cyclic $ref '"+ref+"'", nil)
		}
	}

	if !strings.HasPrefix(ref, "#/") {
		return nil, nil, NewSchemaError(path.String(), "unsupported $ref '"+ref+"'", nil)
	}

	current := interface{}(w.root)
	for _, part := range strings.Split(ref[2:], "/") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, nil, NewSchemaError(path.String(), "unresolvable $ref '"+ref+"'", nil)
		}
		current, ok = obj[part]
		if !ok {
			return nil, nil, NewSchemaError(path.String(), "unresolvable $ref '"+ref+"'", nil)
		}
	}

	resolved, ok := current.(map[string]interface{})
	if !ok {
		return nil, nil, NewSchemaError(path.String(), "unresolvable $ref '"+ref+"'", nil)
	}

	return resolved, append(refChain, ref), nil
}
