package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var document = []byte(`{
	"name": "Ada",
	"age": 36,
	"address": {"city": "London", "post.code": "N1"},
	"phones": [{"type": "home", "number": "555-1234"}, {"type": "work", "number": "555-5678"}],
	"scores": [10, 20],
	"active": true,
	"metadata": null
}`)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "string member", path: "$.name", expected: "Ada"},
		{name: "number member", path: "$.age", expected: "36"},
		{name: "boolean member", path: "$.active", expected: "true"},
		{name: "null member", path: "$.metadata", expected: "null"},
		{name: "nested member", path: "$.address.city", expected: "London"},
		{name: "array element", path: "$.phones[1].number", expected: "555-5678"},
		{name: "bracket member", path: "$['address']['city']", expected: "London"},
		{name: "double quoted member with dot", path: `$.address["post.code"]`, expected: "N1"},
		{name: "without root marker", path: "scores[0]", expected: "10"},
		{name: "array value", path: "$.scores", expected: "[10, 20]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := Extract(document, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestExtract_Root(t *testing.T) {
	value, err := Extract([]byte(`[1,2]`), "$")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", value)
}

func TestExtract_Errors(t *testing.T) {
	_, err := Extract(nil, "$.a")
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = Extract(document, "")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = Extract([]byte(`{"a":`), "$.a")
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = Extract(document, "$.phones[5]")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "$.phones[5]", notFound.Path)
}

func TestExtractAll(t *testing.T) {
	values, err := ExtractAll(document, map[string]string{
		"city":    "$.address.city",
		"missing": "$.nope",
		"first":   "$.phones[0].type",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing: path not found: $.nope")
	assert.Equal(t, map[string]string{"city": "London", "first": "home"}, values)

	values, err = ExtractAll(document, map[string]string{"name": "$.name"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", values["name"])
}
