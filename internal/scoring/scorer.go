package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"crisp/interview/internal/llm"
	"crisp/interview/internal/models"
	"crisp/interview/internal/prompts"
)

const (
	// SourceAI marks scores produced by an LLM provider.
	SourceAI = "ai"
	// SourceFallback marks deterministic heuristic scores.
	SourceFallback = "fallback"
)

var jsonFencePattern = regexp.MustCompile("```json\n?|\n?```")

// Scorer evaluates answers through an LLM provider and falls back to
// the deterministic heuristic when no provider is configured or the
// provider call fails. Both paths end with the same substance caps, so
// a generous AI grade on a near-empty answer cannot stand.
type Scorer struct {
	provider llm.Provider // nil when no AI provider is configured
	prompts  *prompts.PromptManager
	logger   *zap.Logger
}

func NewScorer(provider llm.Provider, pm *prompts.PromptManager, logger *zap.Logger) *Scorer {
	return &Scorer{provider: provider, prompts: pm, logger: logger}
}

// Score grades one answer. It never returns an error: the heuristic
// path always produces a result.
func (s *Scorer) Score(ctx context.Context, req *models.ScoreRequest, autoSubmit bool) *models.ScoreResponse {
	startTime := time.Now()
	rawAnswer := req.Answer
	answer := NormalizeAnswer(rawAnswer, autoSubmit)

	result, meta := s.evaluate(ctx, req, answer)
	result.Score = CapScore(result.Score, rawAnswer)

	meta.ProcessingTime = int(time.Since(startTime).Milliseconds())
	return &models.ScoreResponse{
		Result:    *result,
		RequestID: req.RequestID,
		Metadata:  meta,
	}
}

func (s *Scorer) evaluate(ctx context.Context, req *models.ScoreRequest, answer string) (*models.ScoreResult, models.ScoringMetadata) {
	if s.provider != nil && strings.TrimSpace(req.Answer) != "" {
		result, err := s.scoreWithProvider(ctx, req, answer)
		if err == nil {
			return result, models.ScoringMetadata{
				Provider: s.provider.GetProviderName(),
				Model:    s.provider.GetModelName(),
				Source:   SourceAI,
			}
		}
		s.logger.Warn("AI scoring failed, using heuristic",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
	}

	result := HeuristicScore(req.Question, answer, req.Difficulty, req.TimeTaken, req.TimeLimit)
	return &result, models.ScoringMetadata{Provider: "heuristic", Source: SourceFallback}
}

func (s *Scorer) scoreWithProvider(ctx context.Context, req *models.ScoreRequest, answer string) (*models.ScoreResult, error) {
	efficiency := 0
	if req.TimeLimit > 0 {
		efficiency = int(float64(req.TimeTaken) / float64(req.TimeLimit) * 100)
	}

	prompt, err := s.prompts.BuildPrompt(prompts.ModeScore, prompts.DefaultVariant, map[string]string{
		"Question":   req.Question,
		"Answer":     answer,
		"Difficulty": req.Difficulty,
		"TimeLimit":  strconv.Itoa(req.TimeLimit),
		"TimeTaken":  strconv.Itoa(req.TimeTaken),
		"Efficiency": strconv.Itoa(efficiency),
	})
	if err != nil {
		return nil, err
	}

	generated, err := s.provider.GenerateContent(ctx, prompt, req.RequestID)
	if err != nil {
		return nil, err
	}

	return ParseScoreJSON(generated.Text)
}

// ParseScoreJSON extracts a score result from raw model output,
// tolerating markdown code fences around the JSON body. The score is
// clamped to [0, 100].
func ParseScoreJSON(text string) (*models.ScoreResult, error) {
	cleaned := strings.TrimSpace(jsonFencePattern.ReplaceAllString(text, ""))

	var result models.ScoreResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("failed to parse score response: %w", err)
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}
	if result.Feedback == "" {
		result.Feedback = "Answer evaluated by AI."
	}
	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.Improvements == nil {
		result.Improvements = []string{}
	}
	return &result, nil
}
