package headers

import (
	"fmt"
	"io"
	"strings"
)

const allowedFieldNameChars = "abcdefghijklmnopqrstuvwxyz0123456789!#$%&'*+-.^_`|~"

type field struct {
	name  string
	value string
}

// Headers is an ordered header block. Fields are written in the order they
// were first set.
type Headers struct {
	fields []field
}

func NewHeaders() *Headers {
	return &Headers{}
}

func (h *Headers) Get(key string) (string, bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.name, key) {
			return f.value, true
		}
	}
	return "", false
}

func (h *Headers) Len() int {
	return len(h.fields)
}

// Set adds a field or replaces the value of an existing one, matching names
// case-insensitively. The first spelling of the name is kept.
func (h *Headers) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("invalid field, empty field-name")
	}
	for _, char := range strings.ToLower(key) {
		if !strings.ContainsRune(allowedFieldNameChars, char) {
			return fmt.Errorf("invalid field, field-name contains illegal character: %q", key)
		}
	}
	value = strings.TrimSpace(value)
	if value == "" || strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("invalid field, bad field-value for %q", key)
	}

	for i := range h.fields {
		if strings.EqualFold(h.fields[i].name, key) {
			h.fields[i].value = value
			return nil
		}
	}
	h.fields = append(h.fields, field{name: key, value: value})
	return nil
}

// WriteTo writes "Name: value\n" per field followed by the terminating
// empty line.
func (h *Headers) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for _, f := range h.fields {
		b.WriteString(f.name)
		b.WriteString(": ")
		b.WriteString(f.value)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
