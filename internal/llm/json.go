package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrInvalidJSON marks a model response that could not be decoded as JSON.
var ErrInvalidJSON = errors.New("model response is not valid JSON")

// JSONError carries the offending text so callers can surface it.
type JSONError struct {
	Raw string
	Err error
}

func (e *JSONError) Error() string {
	return fmt.Sprintf("%v: %v\nraw response:\n%s", ErrInvalidJSON, e.Err, e.Raw)
}

func (e *JSONError) Unwrap() []error {
	return []error{ErrInvalidJSON, e.Err}
}

var (
	openingFence = regexp.MustCompile("^```[\\w-]*")
	closingFence = regexp.MustCompile("```$")
)

// StripFences removes a leading ``` (optionally followed by a language tag)
// and a trailing ``` from a model response.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = openingFence.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = closingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// DecodeObject strips code fences and decodes a JSON object. Numbers are kept
// as json.Number so long identifiers survive a round trip.
func DecodeObject(raw string) (map[string]any, error) {
	clean := StripFences(raw)
	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, &JSONError{Raw: clean, Err: err}
	}
	if out == nil {
		return nil, &JSONError{Raw: clean, Err: errors.New("expected a JSON object")}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &JSONError{Raw: clean, Err: errors.New("unexpected data after JSON object")}
	}
	return out, nil
}

// EncodeObject renders a decoded object back to compact JSON without escaping
// non-ASCII text, for feeding it into a follow-up prompt.
func EncodeObject(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
