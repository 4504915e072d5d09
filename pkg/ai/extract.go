package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyResponse indicates the model response carried no extractable text.
var ErrEmptyResponse = errors.New("model response contained no text")

// ErrNoJSONPayload indicates no JSON object could be extracted from the
// model's response text.
var ErrNoJSONPayload = errors.New("model response contained no JSON object")

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// jsonPayload returns the JSON object embedded in text. The strict path is a
// direct parse; when the model wraps its JSON in prose or markdown fences, the
// outermost brace-bounded substring is extracted instead. The second return
// reports whether the fallback fired, so callers can log the anomaly.
func jsonPayload(text string) (string, bool, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false, ErrEmptyResponse
	}

	if json.Valid([]byte(trimmed)) {
		return trimmed, false, nil
	}

	extracted := jsonObjectPattern.FindString(trimmed)
	if extracted == "" || !json.Valid([]byte(extracted)) {
		return "", false, ErrNoJSONPayload
	}

	return extracted, true, nil
}
