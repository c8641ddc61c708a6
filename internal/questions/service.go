package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crisp/interview/internal/llm"
	"crisp/interview/internal/models"
	"crisp/interview/internal/prompts"
	"crisp/interview/internal/utils"
)

const (
	// SourceAI marks question sets produced by an LLM provider.
	SourceAI = "ai"
	// SourceFallback marks the static question set.
	SourceFallback = "fallback"
)

var jsonFencePattern = regexp.MustCompile("```json\n?|\n?```")

// Service generates interview question sets from a candidate profile,
// preferring the AI provider and falling back to the static set.
type Service struct {
	provider llm.Provider // nil when no AI provider is configured
	prompts  *prompts.PromptManager
	logger   *zap.Logger
}

func NewService(provider llm.Provider, pm *prompts.PromptManager, logger *zap.Logger) *Service {
	return &Service{provider: provider, prompts: pm, logger: logger}
}

// Generate produces count questions for the profile. It never returns
// an error: any generation failure yields the fallback set.
func (s *Service) Generate(ctx context.Context, profile *models.CandidateProfile, count int, requestID string) *models.QuestionsResponse {
	if count <= 0 {
		count = models.DefaultQuestionCount
	}

	if s.provider != nil && profile != nil {
		generated, err := s.generateWithProvider(ctx, profile, count, requestID)
		if err == nil {
			return &models.QuestionsResponse{
				Total:     len(generated),
				Items:     generated,
				RequestID: requestID,
				Source:    SourceAI,
			}
		}
		s.logger.Warn("AI question generation failed, using fallback set",
			zap.String("request_id", requestID),
			zap.Error(err))
	}

	items := Fallback(count)
	return &models.QuestionsResponse{
		Total:     len(items),
		Items:     items,
		RequestID: requestID,
		Source:    SourceFallback,
	}
}

func (s *Service) generateWithProvider(ctx context.Context, profile *models.CandidateProfile, count int, requestID string) ([]models.InterviewQuestion, error) {
	prompt, err := s.prompts.BuildPrompt(prompts.ModeQuestions, prompts.DefaultVariant, map[string]string{
		"Count":         strconv.Itoa(count),
		"Name":          profile.Name,
		"Role":          profile.Role,
		"ProfileExtras": profileExtras(profile),
	})
	if err != nil {
		return nil, err
	}

	result, err := s.provider.GenerateContent(ctx, prompt, requestID)
	if err != nil {
		return nil, err
	}

	questions, err := ParseQuestionsJSON(result.Text)
	if err != nil {
		return nil, err
	}
	if len(questions) != count {
		return nil, fmt.Errorf("expected %d questions, provider returned %d", count, len(questions))
	}
	return questions, nil
}

// profileExtras renders the optional profile lines for the prompt.
func profileExtras(profile *models.CandidateProfile) string {
	var lines []string
	if profile.Email != "" {
		lines = append(lines, "- Email: "+profile.Email)
	}
	if profile.Experience != "" {
		lines = append(lines, "- Experience: "+profile.Experience)
	}
	if len(profile.Skills) > 0 {
		lines = append(lines, "- Skills: "+strings.Join(profile.Skills, ", "))
	}
	if profile.ResumeText != "" {
		summary := profile.ResumeText
		if len(summary) > 500 {
			summary = summary[:500] + "..."
		}
		lines = append(lines, "- Resume Summary: "+summary)
	}
	return strings.Join(lines, "\n")
}

// ParseQuestionsJSON extracts a question list from raw model output,
// tolerating markdown code fences. Missing fields fall back to sane
// defaults; every question receives a fresh ID.
func ParseQuestionsJSON(text string) ([]models.InterviewQuestion, error) {
	cleaned := strings.TrimSpace(jsonFencePattern.ReplaceAllString(text, ""))

	var raw []struct {
		Text       string `json:"text"`
		Difficulty string `json:"difficulty"`
		TimeLimit  int    `json:"timeLimit"`
		Category   string `json:"category"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse questions response: %w", err)
	}

	questions := make([]models.InterviewQuestion, 0, len(raw))
	for _, q := range raw {
		if strings.TrimSpace(q.Text) == "" {
			continue
		}
		difficulty := utils.NormalizeDifficulty(q.Difficulty)
		if !models.ValidDifficulties[difficulty] {
			difficulty = models.DifficultyMedium
		}
		timeLimit := q.TimeLimit
		if timeLimit <= 0 {
			timeLimit = models.TimeLimitMedium
		}
		category := q.Category
		if category == "" {
			category = "General"
		}
		questions = append(questions, models.InterviewQuestion{
			ID:         uuid.New().String(),
			Text:       q.Text,
			Difficulty: difficulty,
			TimeLimit:  timeLimit,
			Category:   category,
		})
	}
	return questions, nil
}
