// Package notion appends submissions to a Notion database, creating missing
// properties on the fly.
package notion

import (
	"regexp"
	"strings"
	"time"
)

// PropertyType mirrors the Notion schema types the pipeline can create.
type PropertyType string

const (
	TypeTitle       PropertyType = "title"
	TypeRichText    PropertyType = "rich_text"
	TypeNumber      PropertyType = "number"
	TypeCheckbox    PropertyType = "checkbox"
	TypeEmail       PropertyType = "email"
	TypeURL         PropertyType = "url"
	TypePhone       PropertyType = "phone_number"
	TypeDate        PropertyType = "date"
	TypeMultiSelect PropertyType = "multi_select"
)

var (
	emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	urlRx   = regexp.MustCompile(`^https?://`)
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// InferType maps a value's shape to the Notion property type to create for
// it. The result is deterministic for a given shape.
func InferType(value any) PropertyType {
	switch v := value.(type) {
	case []string, []any:
		return TypeMultiSelect
	case bool:
		return TypeCheckbox
	case int, int32, int64, float32, float64:
		return TypeNumber
	case string:
		return inferStringType(v)
	default:
		return TypeRichText
	}
}

func inferStringType(v string) PropertyType {
	v = strings.TrimSpace(v)
	switch {
	case emailRx.MatchString(v):
		return TypeEmail
	case urlRx.MatchString(v):
		return TypeURL
	case parseDate(v) != nil:
		return TypeDate
	case isPhone(v):
		return TypePhone
	default:
		return TypeRichText
	}
}

// isPhone accepts an optional leading +, then digits, spaces, dashes and
// parens, with 7 to 15 digits in total. Dates parse first, so digit-and-dash
// strings like 2025-06-01 never land here.
func isPhone(v string) bool {
	digits := 0
	for i, r := range v {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

func parseDate(v string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
