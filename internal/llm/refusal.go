package llm

import (
	"errors"
	"strings"
)

// ErrRefusal is returned when the model declines to answer instead of
// producing the requested content.
var ErrRefusal = errors.New("model response indicates refusal")

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// CheckRefusal reports ErrRefusal when text reads like a refusal.
func CheckRefusal(text string) error {
	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return ErrRefusal
		}
	}
	return nil
}
