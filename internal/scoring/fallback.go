package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"crisp/interview/internal/models"
)

// technicalKeywords are generic signals that an answer engages with
// programming concepts at all. Each distinct keyword found counts once.
var technicalKeywords = []string{
	"function", "component", "state", "props", "hook", "api", "database",
	"server", "client", "async", "await", "promise", "callback", "event",
	"method", "class", "object", "array", "string", "number", "boolean",
	"null", "undefined", "return", "import", "export", "const", "let",
	"var", "if", "else", "for", "while", "try", "catch",
}

// questionKeywordPattern extracts the topic words of a question so the
// relevance bonus rewards answers that address what was actually asked.
var questionKeywordPattern = regexp.MustCompile(`\b(react|node|express|javascript|typescript|database|api|state|props|hook|component)\b`)

var numberedListPattern = regexp.MustCompile(`\d+\.`)

// HeuristicScore grades an answer without any model call. It is fully
// deterministic: the same question, answer, difficulty, and timing
// always produce the same result, which keeps the scoring path usable
// when no AI provider is configured or reachable.
func HeuristicScore(questionText, answer, difficulty string, timeTaken, timeLimit int) models.ScoreResult {
	answerText := strings.ToLower(strings.TrimSpace(answer))
	lowerQuestion := strings.ToLower(questionText)

	var score float64
	if len(answerText) < 5 {
		// Minimal points for no effort.
		score = 5
	} else {
		score = lengthScore(answerText) +
			keywordScore(answerText, lowerQuestion) +
			structureScore(answerText) +
			effortScore(answerText)
	}

	score += timeAdjustment(timeTaken, timeLimit)
	score = math.Round(score * difficultyMultiplier(difficulty))

	// Heuristic grades stay inside a humble band: never below a floor
	// for showing up, never high enough to pass for an AI evaluation.
	if score < 5 {
		score = 5
	}
	if score > 85 {
		score = 85
	}

	return bandResult(int(score))
}

// lengthScore grants up to 40 points for answer length.
func lengthScore(answerText string) float64 {
	return math.Min(40, float64(len(answerText))*0.2)
}

// keywordScore grants up to 30 points for technical vocabulary, plus a
// relevance bonus of up to 10 for addressing the question's own topics.
// The bonus lands outside the 30-point cap.
func keywordScore(answerText, questionText string) float64 {
	matches := 0
	for _, kw := range technicalKeywords {
		if strings.Contains(answerText, kw) {
			matches++
		}
	}
	score := math.Min(30, float64(matches)*2)

	relevant := 0
	for _, kw := range questionKeywordPattern.FindAllString(questionText, -1) {
		if strings.Contains(answerText, kw) {
			relevant++
		}
	}
	return score + math.Min(10, float64(relevant)*3)
}

// structureScore grants up to 20 points for signs of an organized
// answer: examples, numbered lists, causal language, multiple sentences.
func structureScore(answerText string) float64 {
	var score float64
	if strings.Contains(answerText, "example") || strings.Contains(answerText, "for instance") {
		score += 5
	}
	if numberedListPattern.MatchString(answerText) {
		score += 5
	}
	if strings.Contains(answerText, "because") || strings.Contains(answerText, "since") {
		score += 5
	}
	if len(strings.Split(answerText, ". ")) > 3 {
		score += 5
	}
	return score
}

// effortScore grants up to 10 points for depth signals.
func effortScore(answerText string) float64 {
	var score float64
	if len(answerText) > 100 {
		score += 3
	}
	if len(answerText) > 200 {
		score += 3
	}
	if strings.Contains(answerText, "would") || strings.Contains(answerText, "could") {
		score += 2
	}
	if strings.Contains(answerText, "best practice") || strings.Contains(answerText, "recommend") {
		score += 2
	}
	return score
}

// timeAdjustment rewards finishing well inside the limit and penalizes
// overtime, capped at -15. A zero limit skips the adjustment entirely.
func timeAdjustment(timeTaken, timeLimit int) float64 {
	if timeLimit <= 0 {
		return 0
	}
	ratio := float64(timeTaken) / float64(timeLimit)
	switch {
	case ratio <= 0.5:
		return 5
	case ratio <= 0.8:
		return 2
	case ratio > 1.2:
		return -math.Min(15, (ratio-1)*20)
	default:
		return 0
	}
}

// difficultyMultiplier boosts easy questions slightly and is more
// forgiving on hard ones.
func difficultyMultiplier(difficulty string) float64 {
	switch difficulty {
	case models.DifficultyEasy:
		return 1.1
	case models.DifficultyHard:
		return 0.9
	default:
		return 1.0
	}
}

// bandResult maps a final score to its performance band and the
// canned feedback for that band.
func bandResult(score int) models.ScoreResult {
	var level string
	switch {
	case score >= 70:
		level = "good"
	case score >= 50:
		level = "adequate"
	case score >= 30:
		level = "basic"
	default:
		level = "poor"
	}

	advice := "Shows understanding but could benefit from more depth."
	if score < 50 {
		advice = "Consider providing more detailed technical explanations and examples."
	}

	strengths := []string{"Made an effort to respond"}
	if score >= 50 {
		strengths = []string{"Attempted comprehensive answer", "Shows basic understanding"}
	}

	improvements := []string{"Consider edge cases and optimization"}
	if score < 70 {
		improvements = []string{
			"Provide more specific technical details",
			"Include concrete examples",
			"Explain reasoning behind choices",
		}
	}

	return models.ScoreResult{
		Score:        score,
		Feedback:     fmt.Sprintf("Answer demonstrates %s effort. %s", level, advice),
		Strengths:    strengths,
		Improvements: improvements,
	}
}
