package session

import (
	"errors"
	"fmt"
	"time"

	"crisp/interview/internal/models"
)

var (
	// ErrNoQuestions is returned when starting a session with an empty
	// question set. Precondition violations fail fast rather than
	// silently clamping.
	ErrNoQuestions = errors.New("session: cannot start with zero questions")

	// ErrCompleted is returned for any transition attempted after the
	// session reached its terminal state. Only Reset is valid then.
	ErrCompleted = errors.New("session: session is complete")

	// ErrLastQuestion is returned by Advance at the final question; the
	// caller must call Complete instead.
	ErrLastQuestion = errors.New("session: already at last question")

	// ErrIndexOutOfRange is returned by JumpTo for an invalid index.
	ErrIndexOutOfRange = errors.New("session: question index out of range")

	// ErrNotFound is returned by stores when no snapshot exists.
	ErrNotFound = errors.New("session: not found")
)

// State is the durable snapshot of one interview session. It is
// mutated exclusively through the transition methods below and
// persisted wholesale so a reload mid-question reconstructs the exact
// timer position.
type State struct {
	ID                         string                     `json:"id"`
	CandidateID                string                     `json:"candidate_id"`
	CurrentQuestion            int                        `json:"current_question"`
	Questions                  []models.InterviewQuestion `json:"questions"`
	Answers                    []models.InterviewAnswer   `json:"answers"`
	StartedAt                  *time.Time                 `json:"started_at,omitempty"`
	IsPaused                   bool                       `json:"is_paused"`
	IsComplete                 bool                       `json:"is_complete"`
	CurrentQuestionStartTime   *time.Time                 `json:"current_question_start_time,omitempty"`
	TimeSpentOnCurrentQuestion int                        `json:"time_spent_on_current_question"`
	UpdatedAt                  time.Time                  `json:"updated_at"`
}

// Start resets all fields and begins the session at question zero with
// its timer running.
func (s *State) Start(candidateID string, questions []models.InterviewQuestion, now time.Time) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	s.CandidateID = candidateID
	s.CurrentQuestion = 0
	s.Questions = questions
	s.Answers = nil
	s.StartedAt = &now
	s.IsPaused = false
	s.IsComplete = false
	s.CurrentQuestionStartTime = &now
	s.TimeSpentOnCurrentQuestion = 0
	s.UpdatedAt = now
	return nil
}

// SubmitAnswer upserts an answer keyed by question ID. It never
// advances the index; validation of answer content is a caller policy.
func (s *State) SubmitAnswer(questionID, text string, timeTaken int) error {
	if s.IsComplete {
		return ErrCompleted
	}

	answer := models.InterviewAnswer{QuestionID: questionID, Text: text, TimeTaken: timeTaken}
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			s.Answers[i] = answer
			return nil
		}
	}
	s.Answers = append(s.Answers, answer)
	return nil
}

// Skip records an empty answer with zero time for the question. The
// caller then advances or completes depending on position.
func (s *State) Skip(questionID string) error {
	return s.SubmitAnswer(questionID, "", 0)
}

// Advance moves to the next question and restarts the per-question
// timer fields. At the last question it returns ErrLastQuestion.
func (s *State) Advance(now time.Time) error {
	if s.IsComplete {
		return ErrCompleted
	}
	if s.CurrentQuestion >= len(s.Questions)-1 {
		return ErrLastQuestion
	}

	s.CurrentQuestion++
	s.CurrentQuestionStartTime = &now
	s.TimeSpentOnCurrentQuestion = 0
	s.UpdatedAt = now
	return nil
}

// AtLastQuestion reports whether Advance would be invalid.
func (s *State) AtLastQuestion() bool {
	return s.CurrentQuestion >= len(s.Questions)-1
}

// PauseTimer folds elapsed wall-clock time into the accumulated
// counter and stops the clock. No-op when the timer is not running.
func (s *State) PauseTimer(now time.Time) {
	if s.CurrentQuestionStartTime == nil {
		return
	}
	elapsed := int(now.Sub(*s.CurrentQuestionStartTime).Seconds())
	if elapsed > 0 {
		s.TimeSpentOnCurrentQuestion += elapsed
	}
	s.CurrentQuestionStartTime = nil
	s.UpdatedAt = now
}

// ResumeTimer restarts the clock for the current question. No-op when
// already running, so accumulated time is never double-counted.
func (s *State) ResumeTimer(now time.Time) {
	if s.CurrentQuestionStartTime != nil {
		return
	}
	s.CurrentQuestionStartTime = &now
	s.UpdatedAt = now
}

// Pause suspends the interview: the paused flag is orthogonal to the
// question position, and the running timer is folded and stopped.
func (s *State) Pause(now time.Time) error {
	if s.IsComplete {
		return ErrCompleted
	}
	s.IsPaused = true
	s.PauseTimer(now)
	return nil
}

// Resume clears the paused flag and restarts the question clock.
func (s *State) Resume(now time.Time) error {
	if s.IsComplete {
		return ErrCompleted
	}
	s.IsPaused = false
	s.ResumeTimer(now)
	return nil
}

// Complete is terminal; after it only Reset is valid.
func (s *State) Complete(now time.Time) error {
	if s.IsComplete {
		return ErrCompleted
	}
	s.IsComplete = true
	s.IsPaused = false
	s.CurrentQuestionStartTime = nil
	s.UpdatedAt = now
	return nil
}

// Reset returns the session to its zero value, keeping only the ID.
func (s *State) Reset(now time.Time) {
	*s = State{ID: s.ID, UpdatedAt: now}
}

// JumpTo moves to an arbitrary question and restarts the timer fields.
// Review/debug path; not part of the timed forward flow.
func (s *State) JumpTo(index int, now time.Time) error {
	if s.IsComplete {
		return ErrCompleted
	}
	if index < 0 || index >= len(s.Questions) {
		return ErrIndexOutOfRange
	}

	s.CurrentQuestion = index
	s.CurrentQuestionStartTime = &now
	s.TimeSpentOnCurrentQuestion = 0
	s.UpdatedAt = now
	return nil
}

// Current returns the active question.
func (s *State) Current() (*models.InterviewQuestion, bool) {
	if s.CurrentQuestion < 0 || s.CurrentQuestion >= len(s.Questions) {
		return nil, false
	}
	return &s.Questions[s.CurrentQuestion], true
}

// AnswerFor returns the stored answer for a question, if any.
func (s *State) AnswerFor(questionID string) (*models.InterviewAnswer, bool) {
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			return &s.Answers[i], true
		}
	}
	return nil, false
}

// Elapsed returns total seconds spent on the current question,
// combining the accumulated counter with the running clock.
func (s *State) Elapsed(now time.Time) int {
	elapsed := s.TimeSpentOnCurrentQuestion
	if s.CurrentQuestionStartTime != nil {
		since := int(now.Sub(*s.CurrentQuestionStartTime).Seconds())
		if since > 0 {
			elapsed += since
		}
	}
	return elapsed
}

// Signature identifies a distinct progress point for the resume
// policy, so a session is only re-evaluated when it actually changes.
func (s *State) Signature() string {
	if s.CandidateID == "" {
		return ""
	}
	return fmt.Sprintf("%s-%d-%d", s.CandidateID, len(s.Answers), len(s.Questions))
}
