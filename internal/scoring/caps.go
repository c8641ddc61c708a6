package scoring

import "strings"

const (
	// Placeholder answers for empty or near-empty submissions, so the
	// scoring prompt always receives some text to evaluate.
	placeholderExpired = "No response provided (time expired)"
	placeholderEmpty   = "No response provided"
	placeholderBrief   = "Very brief response provided"

	shortAnswerCap    = 40
	minimalAnswerCap  = 25
	shortAnswerLen    = 20
	minimalAnswerLen  = 10
	placeholderCutoff = 5
)

// NormalizeAnswer substitutes a placeholder for answers too empty to
// evaluate. Auto-submitted blanks name the expiry so the evaluation
// can account for it.
func NormalizeAnswer(answer string, autoSubmit bool) string {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		if autoSubmit {
			return placeholderExpired
		}
		return placeholderEmpty
	}
	if len(trimmed) < placeholderCutoff {
		return placeholderBrief
	}
	return answer
}

// CapScore bounds a score by the original answer's substance. The cap
// applies uniformly after either scoring path, so a generous AI grade
// on a near-empty answer cannot stand.
func CapScore(score int, originalAnswer string) int {
	trimmed := strings.TrimSpace(originalAnswer)
	switch {
	case len(trimmed) < minimalAnswerLen && score > minimalAnswerCap:
		return minimalAnswerCap
	case len(trimmed) < shortAnswerLen && score > shortAnswerCap:
		return shortAnswerCap
	default:
		return score
	}
}
