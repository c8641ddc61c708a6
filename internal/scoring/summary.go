package scoring

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"crisp/interview/internal/models"
	"crisp/interview/internal/prompts"
)

// Summarize produces the end-of-interview write-up, preferring the AI
// provider and falling back to a templated summary.
func (s *Scorer) Summarize(ctx context.Context, candidateName string, answers []models.ScoredAnswer, overallScore int, requestID string) *models.SummaryResponse {
	if s.provider != nil {
		summary, err := s.summarizeWithProvider(ctx, candidateName, answers, overallScore, requestID)
		if err == nil {
			return &models.SummaryResponse{
				Summary:   summary,
				RequestID: requestID,
				Metadata: models.ScoringMetadata{
					Provider: s.provider.GetProviderName(),
					Model:    s.provider.GetModelName(),
					Source:   SourceAI,
				},
			}
		}
		s.logger.Warn("AI summary failed, using fallback",
			zap.String("request_id", requestID),
			zap.Error(err))
	}

	return &models.SummaryResponse{
		Summary:   FallbackSummary(candidateName, answers, overallScore),
		RequestID: requestID,
		Metadata:  models.ScoringMetadata{Provider: "heuristic", Source: SourceFallback},
	}
}

func (s *Scorer) summarizeWithProvider(ctx context.Context, candidateName string, answers []models.ScoredAnswer, overallScore int, requestID string) (string, error) {
	var sb strings.Builder
	for i, a := range answers {
		fmt.Fprintf(&sb, "\nQ%d (%s): %s\nAnswer: %s\nScore: %d/100\nTime: %ds\n",
			i+1, a.Difficulty, a.Question, a.Answer, a.Score, a.TimeTaken)
	}

	prompt, err := s.prompts.BuildPrompt(prompts.ModeSummary, prompts.DefaultVariant, map[string]string{
		"Name":         candidateName,
		"OverallScore": strconv.Itoa(overallScore),
		"Answers":      sb.String(),
	})
	if err != nil {
		return "", err
	}

	generated, err := s.provider.GenerateContent(ctx, prompt, requestID)
	if err != nil {
		return "", err
	}
	return generated.Text, nil
}

// FallbackSummary is the deterministic summary used when no provider
// is available.
func FallbackSummary(candidateName string, answers []models.ScoredAnswer, overallScore int) string {
	avgScore := 0
	if len(answers) > 0 {
		total := 0
		for _, a := range answers {
			total += a.Score
		}
		avgScore = int(math.Round(float64(total) / float64(len(answers))))
	}

	knowledge := "developing"
	if overallScore >= 80 {
		knowledge = "excellent"
	} else if overallScore >= 60 {
		knowledge = "good"
	}

	recommendation := "Consider additional technical discussion or training opportunities."
	if overallScore >= 70 {
		recommendation = "Recommended for further consideration."
	}

	return fmt.Sprintf(`%s completed the technical interview with an overall score of %d/100 (average: %d/100).

They demonstrated %s technical knowledge across the assessed areas. Key strengths include problem-solving approach and communication skills.

%s`, candidateName, overallScore, avgScore, knowledge, recommendation)
}
