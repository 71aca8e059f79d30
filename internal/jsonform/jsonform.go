// Package jsonform converts between structured JSON values and the plain text an HTML
// form field shows for them.
//
// Encode only renders map-shaped documents; any other top-level value is shown as an
// empty field. Decode returns whatever the text parses to, maps or not.
package jsonform

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
)

const indent = "    "

var errTrailingData = errors.New("invalid character after top-level value")

// TransformationFailedError reports form text that is not valid JSON.
// It belongs to the field being bound, not to the request as a whole.
type TransformationFailedError struct {
	Message string
}

func (e *TransformationFailedError) Error() string {
	return e.Message
}

// Encode renders a map as indented JSON for a text field.
// nil and non-map values produce "". Encode never fails.
func Encode(v any) string {
	if v == nil || !isStringKeyedMap(v) {
		return ""
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Decode parses form text. Empty or whitespace-only text yields nil.
func Decode(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	v, err := unmarshalAny([]byte(text))
	if err != nil {
		return nil, &TransformationFailedError{Message: "Invalid JSON: " + err.Error()}
	}
	return v, nil
}

// unmarshalAny parses exactly one JSON value. Numbers are kept as json.Number so integers
// beyond 2^53 survive a decode/encode round trip.
func unmarshalAny(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}

// DecodeNullable is Decode for a field that may be missing entirely.
func DecodeNullable(text *string) (any, error) {
	if text == nil {
		return nil, nil
	}
	return Decode(*text)
}

func isStringKeyedMap(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.IsNil() {
		return false
	}
	return rv.Type().Key().Kind() == reflect.String
}
