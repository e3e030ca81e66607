package docfill

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Common date format patterns accepted as input. ISO-8601 variants come
// first since that is what the schema's date format promises.
var commonDateFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",

	"01/02/2006",
	"02.01.2006",
	"2006/01/02",

	"Jan 2, 2006",
	"January 2, 2006",
}

// parseDate attempts to parse a date from various input types
func parseDate(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		if v == "" {
			return time.Time{}, fmt.Errorf("cannot parse empty string as date")
		}
		for _, format := range commonDateFormats {
			if parsed, err := time.Parse(format, v); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("could not parse date string: %s", v)
	case nil:
		return time.Time{}, fmt.Errorf("cannot parse nil as date")
	default:
		return parseDate(fmt.Sprintf("%v", v))
	}
}

// emailMarker prefixes email-format values in the output so they are
// recognizable at a glance.
const emailMarker = "✉"

// formatValue renders a resolved value into its display form.
//
// Dates are re-rendered in the configured display layout; an unparseable
// date value falls back to its verbatim text. Emails stay verbatim with a
// marker. Everything else goes through the fixed stringification policy.
func formatValue(value interface{}, format FieldFormat, dateDisplay string) string {
	switch format {
	case FormatDate:
		parsed, err := parseDate(value)
		if err != nil {
			return stringify(value)
		}
		return parsed.Format(dateDisplay)
	case FormatEmail:
		s := stringify(value)
		if s == "" {
			return ""
		}
		return emailMarker + " " + s
	default:
		return stringify(value)
	}
}

// stringify applies the fixed stringification policy: numbers without locale
// separators and without a trailing .0 when integral, booleans as
// true/false, nested structures as a readable key: value listing.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return stringify(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case map[string]interface{}:
		return keyValueListing(v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// keyValueListing renders a nested object as sorted "key: value" lines, so
// structured data without a dedicated mapping stays visible in the output.
func keyValueListing(obj map[string]interface{}) string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+stringify(obj[k]))
	}
	return strings.Join(lines, "\n")
}
