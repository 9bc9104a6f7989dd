package notion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferType(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  PropertyType
	}{
		{"string slice", []string{"a", "b"}, TypeMultiSelect},
		{"any slice", []any{"a", 1}, TypeMultiSelect},
		{"bool", true, TypeCheckbox},
		{"int", 42, TypeNumber},
		{"float", 3.14, TypeNumber},
		{"email", "ada@example.com", TypeEmail},
		{"url http", "http://example.com", TypeURL},
		{"url https", "https://example.com/path?q=1", TypeURL},
		{"phone international", "+1 (555) 123-4567", TypePhone},
		{"phone plain", "5551234567", TypePhone},
		{"date rfc3339", "2025-06-01T12:30:00Z", TypeDate},
		{"date plain", "2025-06-01", TypeDate},
		{"date with time", "2025-06-01 12:30:00", TypeDate},
		{"plain text", "hello world", TypeRichText},
		{"nil", nil, TypeRichText},
		{"short digits fall through", "1234", TypeRichText},
		{"date outranks phone shape", "2025-06-01", TypeDate},
		{"spaced digits are not a phone", "1     2", TypeRichText},
		{"sixteen digits are not a phone", "1234567890123456", TypeRichText},
		{"ftp url is text", "ftp://example.com", TypeRichText},
		{"almost email", "not an@email", TypeRichText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, InferType(tc.value))
		})
	}
}

func TestInferTypeTrimsWhitespace(t *testing.T) {
	assert.Equal(t, TypeEmail, InferType("  ada@example.com  "))
	assert.Equal(t, TypeDate, InferType(" 2025-06-01 "))
}
