package calculator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
)

// DecodeError reports a payload that is not valid JSON or does not match the
// family's input schema.
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string { return "decode error: " + e.Message }

func decodeErrorf(format string, args ...any) *DecodeError {
	return &DecodeError{Message: fmt.Sprintf(format, args...)}
}

// DecodeStrict decodes exactly one JSON object into dst. Unknown fields,
// trailing data and missing or null required fields are rejected. Keys must
// match the json names exactly; encoding/json alone would accept any casing.
// A field is required unless its json tag carries omitempty.
func DecodeStrict(payload []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return describeJSONError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return decodeErrorf("unexpected data after JSON object")
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(payload, &present); err != nil {
		return describeJSONError(err)
	}
	fields, ok := schemaFields(reflect.TypeOf(dst))
	if !ok {
		return nil
	}
	if key := firstUnknownKey(present, fields); key != "" {
		return decodeErrorf("unknown field %q", key)
	}
	for _, f := range fields {
		if !f.required {
			continue
		}
		raw, ok := present[f.name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return decodeErrorf("missing required field %q", f.name)
		}
	}
	return nil
}

func describeJSONError(err error) *DecodeError {
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return decodeErrorf("empty payload")
	case errors.As(err, &syn):
		return decodeErrorf("malformed JSON at offset %d: %s", syn.Offset, syn.Error())
	case errors.As(err, &typ):
		if typ.Field != "" {
			return decodeErrorf("field %q: expected %s, got JSON %s", typ.Field, typ.Type, typ.Value)
		}
		return decodeErrorf("expected a JSON object, got JSON %s", typ.Value)
	}
	return decodeErrorf("%s", strings.TrimPrefix(err.Error(), "json: "))
}

type schemaField struct {
	name     string
	required bool
}

// firstUnknownKey returns the lexically first key that is not an exact json
// name of the schema, or "" when every key matches.
func firstUnknownKey(present map[string]json.RawMessage, fields []schemaField) string {
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.name] = true
	}
	var unknown []string
	for key := range present {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return ""
	}
	sort.Strings(unknown)
	return unknown[0]
}

func schemaFields(t reflect.Type) ([]schemaField, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	var out []schemaField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		out = append(out, schemaField{name: name, required: !strings.Contains(opts, "omitempty")})
	}
	return out, true
}
