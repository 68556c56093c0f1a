package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/trustlit/trustlit-server/internal/domain/analysis"
)

// Models wrap JSON in markdown fences more often than not, whatever the
// system prompt says. Extraction order: direct parse, fenced code block,
// then the widest brace-delimited slice.
func decodeResult(text string) (*domain.Result, error) {
	payload, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	var result domain.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("could not parse model response as JSON: %v", err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("model response failed validation: %v", err)
	}
	return &result, nil
}

func extractJSON(text string) ([]byte, error) {
	trimmed := strings.TrimSpace(text)
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}

	if start := strings.Index(text, "```"); start != -1 {
		rest := text[start+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end != -1 {
			candidate := strings.TrimSpace(rest[:end])
			if json.Valid([]byte(candidate)) {
				return []byte(candidate), nil
			}
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first != -1 && last > first {
		candidate := text[first : last+1]
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
	}

	return nil, fmt.Errorf("could not parse model response as JSON")
}
