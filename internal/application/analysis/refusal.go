package analysis

import "strings"

// Phrases that mark a content-policy refusal. Substring matching on free
// text is fragile by nature; the predicate is pluggable via
// WithRefusalDetector so the lexicon can be swapped without touching the
// orchestration.
var refusalPhrases = []string{
	"i'm sorry",
	"i can't assist",
	"i cannot",
	"i'm unable",
	"i apologize",
}

// IsRefusal reports whether the response text declines the task.
func IsRefusal(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
