package models

import (
	"strings"
)

// StartSessionRequest begins an interview session for a candidate.
// When Questions is empty the server generates a set from the profile
// (falling back to the static list when no AI provider is configured).
type StartSessionRequest struct {
	CandidateID string              `json:"candidate_id"`
	Questions   []InterviewQuestion `json:"questions,omitempty"`
	Profile     *CandidateProfile   `json:"profile,omitempty"`
	Count       int                 `json:"count,omitempty"`
	RequestID   string              `json:"request_id"`
}

// implements the Validator interface
func (r *StartSessionRequest) Validate() error {
	if r.CandidateID == "" {
		return &ErrorResponse{
			Code:    "missing_candidate_id",
			Message: "Candidate ID is required",
		}
	}

	for i := range r.Questions {
		q := &r.Questions[i]
		if strings.TrimSpace(q.Text) == "" {
			return &ErrorResponse{
				Code:    "invalid_question",
				Message: "Question text must not be empty",
			}
		}
		if q.TimeLimit <= 0 {
			return &ErrorResponse{
				Code:    "invalid_time_limit",
				Message: "Question time limit must be positive",
			}
		}
		q.Difficulty = strings.ToLower(strings.TrimSpace(q.Difficulty))
		if !ValidDifficulties[q.Difficulty] {
			return &ErrorResponse{
				Code:    "invalid_difficulty",
				Message: "Difficulty must be one of: easy, medium, hard",
			}
		}
	}

	if r.Count < 0 {
		return &ErrorResponse{
			Code:    "invalid_count",
			Message: "Question count must not be negative",
		}
	}
	if r.Count == 0 {
		r.Count = DefaultQuestionCount
	}

	return nil
}

// SubmitAnswerRequest records an answer for the current question and
// triggers scoring. AutoSubmit marks timer-expiry submissions so empty
// answers are handled leniently downstream.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	TimeTaken  int    `json:"time_taken"`
	AutoSubmit bool   `json:"auto_submit,omitempty"`
	RequestID  string `json:"request_id"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if r.QuestionID == "" {
		return &ErrorResponse{Code: "missing_question_id", Message: "Question ID is required"}
	}
	if r.TimeTaken < 0 {
		return &ErrorResponse{Code: "invalid_time_taken", Message: "Time taken must not be negative"}
	}
	if !r.AutoSubmit && strings.TrimSpace(r.Text) == "" {
		return &ErrorResponse{Code: "empty_answer", Message: "Answer text is required for manual submissions"}
	}
	return nil
}

// SkipQuestionRequest records an empty answer and moves on.
type SkipQuestionRequest struct {
	QuestionID string `json:"question_id"`
}

func (r *SkipQuestionRequest) Validate() error {
	if r.QuestionID == "" {
		return &ErrorResponse{Code: "missing_question_id", Message: "Question ID is required"}
	}
	return nil
}

// JumpRequest moves a session to an arbitrary question index. Review
// path only; not part of the timed forward flow.
type JumpRequest struct {
	Index int `json:"index"`
}

func (r *JumpRequest) Validate() error {
	if r.Index < 0 {
		return &ErrorResponse{Code: "invalid_index", Message: "Question index must not be negative"}
	}
	return nil
}

// ScoreRequest evaluates a single answer outside of a session, for the
// dashboard's re-score path.
type ScoreRequest struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
	TimeLimit  int    `json:"time_limit"`
	TimeTaken  int    `json:"time_taken"`
	RequestID  string `json:"request_id"`
}

func (r *ScoreRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return &ErrorResponse{Code: "missing_question", Message: "Question field is required"}
	}

	r.Difficulty = strings.ToLower(strings.TrimSpace(r.Difficulty))
	if r.Difficulty == "" {
		r.Difficulty = "medium"
	}
	if !ValidDifficulties[r.Difficulty] {
		return &ErrorResponse{
			Code:    "invalid_difficulty",
			Message: "Difficulty must be one of: easy, medium, hard",
		}
	}

	if r.TimeLimit <= 0 {
		return &ErrorResponse{Code: "invalid_time_limit", Message: "Time limit must be positive"}
	}
	if r.TimeTaken < 0 {
		return &ErrorResponse{Code: "invalid_time_taken", Message: "Time taken must not be negative"}
	}
	return nil
}

// GenerateQuestionsRequest produces an interview question set for a
// candidate profile.
type GenerateQuestionsRequest struct {
	Profile   CandidateProfile `json:"profile"`
	Count     int              `json:"count"`
	RequestID string           `json:"request_id"`
}

func (r *GenerateQuestionsRequest) Validate() error {
	if strings.TrimSpace(r.Profile.Name) == "" {
		return &ErrorResponse{Code: "missing_name", Message: "Profile name is required"}
	}
	if strings.TrimSpace(r.Profile.Role) == "" {
		return &ErrorResponse{Code: "missing_role", Message: "Profile role is required"}
	}
	if r.Count < 0 {
		return &ErrorResponse{Code: "invalid_count", Message: "Question count must not be negative"}
	}
	if r.Count == 0 {
		r.Count = DefaultQuestionCount
	}
	return nil
}

// SummarizeRequest produces an overall interview summary from scored
// answers.
type SummarizeRequest struct {
	CandidateName string         `json:"candidate_name"`
	Answers       []ScoredAnswer `json:"answers"`
	OverallScore  int            `json:"overall_score"`
	RequestID     string         `json:"request_id"`
}

func (r *SummarizeRequest) Validate() error {
	if strings.TrimSpace(r.CandidateName) == "" {
		return &ErrorResponse{Code: "missing_name", Message: "Candidate name is required"}
	}
	if len(r.Answers) == 0 {
		return &ErrorResponse{Code: "missing_answers", Message: "At least one scored answer is required"}
	}
	if r.OverallScore < 0 || r.OverallScore > 100 {
		return &ErrorResponse{Code: "invalid_score", Message: "Overall score must be between 0 and 100"}
	}
	return nil
}

// CreateCandidateRequest registers a candidate for interviewing.
type CreateCandidateRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone,omitempty"`
	Position   string   `json:"position"`
	Experience int      `json:"experience"`
	Skills     []string `json:"skills,omitempty"`
}

func (r *CreateCandidateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ErrorResponse{Code: "missing_name", Message: "Name field is required"}
	}
	if !strings.Contains(r.Email, "@") {
		return &ErrorResponse{Code: "invalid_email", Message: "A valid email is required"}
	}
	if strings.TrimSpace(r.Position) == "" {
		return &ErrorResponse{Code: "missing_position", Message: "Position field is required"}
	}
	if r.Experience < 0 {
		return &ErrorResponse{Code: "invalid_experience", Message: "Experience must not be negative"}
	}
	return nil
}

// CreateInterviewRequest schedules an interview for a candidate.
type CreateInterviewRequest struct {
	CandidateID string   `json:"candidate_id"`
	QuestionIDs []string `json:"question_ids,omitempty"`
}

func (r *CreateInterviewRequest) Validate() error {
	if r.CandidateID == "" {
		return &ErrorResponse{Code: "missing_candidate_id", Message: "Candidate ID is required"}
	}
	return nil
}
