package models

// Question difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// contains all valid question difficulties (in lowercase)
var ValidDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// contains all valid candidate statuses
var ValidCandidateStatuses = map[string]bool{
	"pending":     true,
	"in-progress": true,
	"completed":   true,
	"rejected":    true,
}

// contains all valid interview statuses
var ValidInterviewStatuses = map[string]bool{
	"scheduled":   true,
	"in-progress": true,
	"completed":   true,
	"cancelled":   true,
}

func ValidDifficultiesList() []string {
	return []string{"easy", "medium", "hard"}
}

// DefaultQuestionCount is the number of questions generated per interview.
const DefaultQuestionCount = 6

// Per-difficulty time limits in seconds, matching the generated question mix.
const (
	TimeLimitEasy   = 20
	TimeLimitMedium = 60
	TimeLimitHard   = 120
)
