// Package docfill provides custom error types for schema, template and
// generation failures, plus the non-fatal warning taxonomy.
package docfill

import (
	"fmt"
	"strings"
)

// SchemaError represents a malformed or unsupported JSON schema structure.
type SchemaError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("schema error at '%s': %s: %v", e.Path, e.Message, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("schema error at '%s': %s", e.Path, e.Message)
	} else if e.Cause != nil {
		return fmt.Sprintf("schema error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("schema error: %s", e.Message)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// NewSchemaError creates a new schema error for the given field path
func NewSchemaError(path, message string, cause error) error {
	return &SchemaError{
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// TemplateStructureError represents an unreadable or corrupt template container.
type TemplateStructureError struct {
	Part    string
	Message string
	Cause   error
}

func (e *TemplateStructureError) Error() string {
	if e.Part != "" && e.Cause != nil {
		return fmt.Sprintf("template structure error in '%s': %s: %v", e.Part, e.Message, e.Cause)
	} else if e.Part != "" {
		return fmt.Sprintf("template structure error in '%s': %s", e.Part, e.Message)
	} else if e.Cause != nil {
		return fmt.Sprintf("template structure error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template structure error: %s", e.Message)
}

func (e *TemplateStructureError) Unwrap() error {
	return e.Cause
}

// NewTemplateStructureError creates a new template structure error
func NewTemplateStructureError(part, message string, cause error) error {
	return &TemplateStructureError{
		Part:    part,
		Message: message,
		Cause:   cause,
	}
}

// UnknownVariantError represents an unrecognized row discriminator value in a
// dynamic table record. There is no safe default layout for an unknown
// variant, so this aborts the table it occurs in.
type UnknownVariantError struct {
	Value string
	Index int
}

func (e *UnknownVariantError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("unknown row variant: missing discriminator in record %d", e.Index)
	}
	return fmt.Sprintf("unknown row variant '%s' in record %d", e.Value, e.Index)
}

// NewUnknownVariantError creates a new unknown variant error
func NewUnknownVariantError(value string, index int) error {
	return &UnknownVariantError{
		Value: value,
		Index: index,
	}
}

// WarningKind classifies non-fatal issues collected during validation and
// generation.
type WarningKind int

const (
	// WarnUnmappedField reports a schema field with no mapping entry
	WarnUnmappedField WarningKind = iota
	// WarnStaleLocation reports a mapped location id absent from the template
	WarnStaleLocation
	// WarnMissingData reports a mapped field with no value in the data record
	WarnMissingData
)

func (k WarningKind) String() string {
	switch k {
	case WarnUnmappedField:
		return "unmapped-field"
	case WarnStaleLocation:
		return "stale-location"
	case WarnMissingData:
		return "missing-data"
	default:
		return "unknown"
	}
}

// Warning represents a single non-fatal issue. Warnings never abort a run;
// they are collected and surfaced to the caller at the end.
type Warning struct {
	Kind       WarningKind
	FieldPath  string
	LocationID string
	Message    string
}

func (w Warning) String() string {
	var parts []string
	parts = append(parts, w.Kind.String())
	if w.FieldPath != "" {
		parts = append(parts, fmt.Sprintf("field=%s", w.FieldPath))
	}
	if w.LocationID != "" {
		parts = append(parts, fmt.Sprintf("location=%s", w.LocationID))
	}
	if w.Message != "" {
		parts = append(parts, w.Message)
	}
	return strings.Join(parts, ": ")
}

// WarningList collects warnings during a run
type WarningList struct {
	warnings []Warning
}

// Add appends a warning to the collection
func (l *WarningList) Add(w Warning) {
	l.warnings = append(l.warnings, w)
}

// Len returns the number of collected warnings
func (l *WarningList) Len() int {
	return len(l.warnings)
}

// All returns the collected warnings in the order they were added
func (l *WarningList) All() []Warning {
	return l.warnings
}
