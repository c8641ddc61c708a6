package questions

import "crisp/interview/internal/models"

// fallbackQuestions is the static interview set used when no AI
// provider is configured or generation fails. Two questions per
// difficulty, with the standard per-difficulty time limits.
var fallbackQuestions = []models.InterviewQuestion{
	{
		ID:         "fallback-1",
		Text:       "Explain the difference between state and props in React. When would you use each?",
		Difficulty: models.DifficultyEasy,
		TimeLimit:  models.TimeLimitEasy,
		Category:   "React",
	},
	{
		ID:         "fallback-2",
		Text:       "What is the purpose of useEffect hook and how do you handle cleanup?",
		Difficulty: models.DifficultyEasy,
		TimeLimit:  models.TimeLimitEasy,
		Category:   "React",
	},
	{
		ID:         "fallback-3",
		Text:       "Describe how you would implement a custom hook in React. Give an example.",
		Difficulty: models.DifficultyMedium,
		TimeLimit:  models.TimeLimitMedium,
		Category:   "React",
	},
	{
		ID:         "fallback-4",
		Text:       "Explain the concept of middleware in Express.js and how you would use it for authentication.",
		Difficulty: models.DifficultyMedium,
		TimeLimit:  models.TimeLimitMedium,
		Category:   "Node.js",
	},
	{
		ID:         "fallback-5",
		Text:       "Design a scalable REST API for a social media platform. Consider rate limiting, caching, and database design.",
		Difficulty: models.DifficultyHard,
		TimeLimit:  models.TimeLimitHard,
		Category:   "System Design",
	},
	{
		ID:         "fallback-6",
		Text:       "Explain how you would optimize a React application with performance issues. Include specific techniques and tools.",
		Difficulty: models.DifficultyHard,
		TimeLimit:  models.TimeLimitHard,
		Category:   "React",
	},
}

// Fallback returns up to count questions from the static set.
func Fallback(count int) []models.InterviewQuestion {
	if count <= 0 || count > len(fallbackQuestions) {
		count = len(fallbackQuestions)
	}
	return append([]models.InterviewQuestion(nil), fallbackQuestions[:count]...)
}
