// Package sheets appends submissions to Google Sheets, reconciling the
// header row with whatever field names arrive.
package sheets

import (
	"strings"
	"unicode"
)

// NormalizeName lower-cases a field name and collapses every run of
// non-alphanumeric characters into a single underscore. The normalized form
// is the column matching key, so "Full Name" and "full_name" share a column.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Reconcile merges incoming field names into an existing header list.
// Existing headers keep their text and position; incoming names whose
// normalized form is new are appended in arrival order. The returned slice
// is the full header list; changed reports whether it grew.
func Reconcile(existing []string, incoming []string) (headers []string, changed bool) {
	headers = make([]string, len(existing))
	copy(headers, existing)

	seen := make(map[string]struct{}, len(existing))
	for _, h := range existing {
		seen[NormalizeName(h)] = struct{}{}
	}

	for _, name := range incoming {
		key := NormalizeName(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		headers = append(headers, name)
		changed = true
	}
	return headers, changed
}

// BuildRow walks the header list in order and picks the value of the
// incoming field whose normalized name matches each header, empty string
// when the submission has no such field.
func BuildRow(headers []string, fields map[string]string) []string {
	byKey := make(map[string]string, len(fields))
	for name, value := range fields {
		key := NormalizeName(name)
		if key == "" {
			continue
		}
		if _, ok := byKey[key]; !ok {
			byKey[key] = value
		}
	}

	row := make([]string, len(headers))
	for i, header := range headers {
		row[i] = byKey[NormalizeName(header)]
	}
	return row
}
