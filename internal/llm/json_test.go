package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"upper tag", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding space", "  \n```json {\"a\":1} ```\n ", `{"a":1}`},
		{"no closing fence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestDecodeObject_FencedMatchesPlain(t *testing.T) {
	payload := `{"full_name":"Ahmed Ali","national_id_number":29801011234567,"tags":["a","b"]}`

	plain, err := DecodeObject(payload)
	require.NoError(t, err)

	for _, wrapped := range []string{
		"```\n" + payload + "\n```",
		"```json\n" + payload + "\n```",
	} {
		got, err := DecodeObject(wrapped)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}

	assert.Equal(t, json.Number("29801011234567"), plain["national_id_number"])
}

func TestDecodeObject_InvalidKeepsRaw(t *testing.T) {
	_, err := DecodeObject("```json\nName: Ahmed\n```")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidJSON))

	var jerr *JSONError
	require.True(t, errors.As(err, &jerr))
	assert.Equal(t, "Name: Ahmed", jerr.Raw)
	assert.Contains(t, err.Error(), "Name: Ahmed")

	for _, raw := range []string{
		`{"a":1}{"b":2}`,
		"```json\n{\"a\":1}\n```\nLet me know if you need more.",
		`{"a":1}}`,
	} {
		out, err := DecodeObject(raw)
		assert.ErrorIs(t, err, ErrInvalidJSON, raw)
		assert.Nil(t, out, raw)
		require.True(t, errors.As(err, &jerr))
		assert.Contains(t, jerr.Raw, `{"a":1}`)
	}
}

func TestDecodeObject_RejectsNonObject(t *testing.T) {
	_, err := DecodeObject("null")
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = DecodeObject(`["a"]`)
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestEncodeObject_KeepsArabic(t *testing.T) {
	s, err := EncodeObject(map[string]any{"name": "شركة <النور>"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"شركة <النور>"}`, s)
}

func TestCheckRefusal(t *testing.T) {
	assert.ErrorIs(t, CheckRefusal("I am unable to read this image."), ErrRefusal)
	assert.NoError(t, CheckRefusal("الاسم: أحمد علي"))
}
