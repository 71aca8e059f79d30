package jsonform

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	docs := []map[string]any{
		{"a": json.Number("1"), "b": []any{true, nil, "x"}},
		{},
		{"nested": map[string]any{"deep": map[string]any{"list": []any{json.Number("1.5"), "two"}}}},
		{"empty_list": []any{}, "null": nil, "flag": false, "unicode": "zażółć ✓"},
	}

	for _, doc := range docs {
		text := Encode(doc)
		require.NotEmpty(t, text)

		got, err := Decode(text)
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	}
}

func TestRoundTripKeepsLargeIntegers(t *testing.T) {
	text := `{"campaign_id": 9007199254740993, "price": 19.90, "ids": [9007199254740995]}`

	got, err := Decode(text)
	require.NoError(t, err)
	doc, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("9007199254740993"), doc["campaign_id"])

	encoded := Encode(got)
	assert.Contains(t, encoded, `"campaign_id": 9007199254740993`)
	assert.Contains(t, encoded, `"price": 19.90`)
	assert.Contains(t, encoded, `9007199254740995`)

	again, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestEncodeAbsent(t *testing.T) {
	assert.Equal(t, "", Encode(nil))

	var m map[string]any
	assert.Equal(t, "", Encode(m))

	var d Document
	assert.Equal(t, "", Encode(d))
}

func TestEncodeDiscardsNonMaps(t *testing.T) {
	// Top-level scalars and lists are shown as an empty field.
	for _, v := range []any{"a plain string", 42, 3.14, true, []any{1, 2}, []string{"x"}, struct{ A int }{1}} {
		assert.Equal(t, "", Encode(v), "%#v", v)
	}
}

func TestEncodeTypedMaps(t *testing.T) {
	assert.Equal(t, "{\n    \"k\": \"v\"\n}", Encode(map[string]string{"k": "v"}))
	assert.Equal(t, "{\n    \"n\": 3\n}", Encode(Document{"n": 3}))
	assert.Equal(t, "", Encode(map[int]string{1: "x"}))
}

func TestEncodePrettyPrints(t *testing.T) {
	text := Encode(map[string]any{"a": 1, "b": map[string]any{"c": []any{1, 2}}})
	want := `{
    "a": 1,
    "b": {
        "c": [
            1,
            2
        ]
    }
}`
	assert.Equal(t, want, text)
}

func TestEncodeLeavesSlashesAndHTML(t *testing.T) {
	text := Encode(map[string]any{"path": "a/b/c", "link": "https://example.com/x?a=1&b=<2>"})
	assert.Contains(t, text, "a/b/c")
	assert.Contains(t, text, "https://example.com/x?a=1&b=<2>")
	assert.NotContains(t, text, `\/`)
	assert.NotContains(t, text, `\u0026`)
	assert.NotContains(t, text, `\u003c`)
}

func TestEncodeUnmarshalableDegradesToEmpty(t *testing.T) {
	assert.Equal(t, "", Encode(map[string]any{"ch": make(chan int)}))
}

func TestDecodeEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		v, err := Decode(text)
		assert.NoError(t, err)
		assert.Nil(t, v)
	}

	v, err := DecodeNullable(nil)
	assert.NoError(t, err)
	assert.Nil(t, v)

	blank := "  "
	v, err = DecodeNullable(&blank)
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestDecodeReturnsNonMaps(t *testing.T) {
	cases := map[string]any{
		`[1, "a"]`:   []any{json.Number("1"), "a"},
		`"text"`:     "text",
		`12`:         json.Number("12"),
		`true`:       true,
		`null`:       nil,
		` {"a": 1} `: map[string]any{"a": json.Number("1")},
	}
	for text, want := range cases {
		got, err := Decode(text)
		require.NoError(t, err, text)
		assert.Equal(t, want, got, text)
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, text := range []string{"{not valid json", `{"a": 1,}`, `{"a": 1} trailing`, `{"a": 1}}`, `{"a": 1} {"b": 2}`, "nul"} {
		_, err := Decode(text)
		require.Error(t, err, text)

		var tfe *TransformationFailedError
		require.True(t, errors.As(err, &tfe), text)
		assert.True(t, strings.HasPrefix(tfe.Message, "Invalid JSON: "), tfe.Message)
		assert.Greater(t, len(tfe.Message), len("Invalid JSON: "))
	}
}

func TestFieldUnmarshalParam(t *testing.T) {
	var f Field
	require.NoError(t, f.UnmarshalParam(`{"layout": "wide"}`))
	assert.True(t, f.Set)

	doc, ok := f.Document()
	require.True(t, ok)
	assert.Equal(t, "wide", doc["layout"])
	assert.Equal(t, "{\n    \"layout\": \"wide\"\n}", f.String())

	var bad Field
	err := bad.UnmarshalParam("{oops")
	var tfe *TransformationFailedError
	assert.ErrorAs(t, err, &tfe)
	assert.False(t, bad.Set)

	var list Field
	require.NoError(t, list.UnmarshalParam(`[1]`))
	_, ok = list.Document()
	assert.False(t, ok)
	assert.Equal(t, "", list.String())
}
