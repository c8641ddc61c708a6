package models

import "time"

// InterviewQuestion is a single question in an interview session.
// Questions are immutable once a session has started.
type InterviewQuestion struct {
	ID         string `bson:"id" json:"id"`
	Text       string `bson:"text" json:"text"`
	Difficulty string `bson:"difficulty" json:"difficulty"` // "easy" | "medium" | "hard"
	TimeLimit  int    `bson:"time_limit" json:"time_limit"` // seconds, > 0
	Category   string `bson:"category" json:"category"`
}

// InterviewAnswer is one candidate answer keyed by question ID.
// A later submission for the same question replaces the earlier one.
type InterviewAnswer struct {
	QuestionID string `bson:"question_id" json:"question_id"`
	Text       string `bson:"text" json:"text"`
	TimeTaken  int    `bson:"time_taken" json:"time_taken"` // seconds, >= 0
}

// ScoreResult is the outcome of evaluating one answer, from either the
// AI provider or the deterministic fallback.
type ScoreResult struct {
	Score        int      `json:"score"` // [0,100]
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// CandidateProfile is the input to AI question generation.
type CandidateProfile struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	Experience string   `json:"experience,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	ResumeText string   `json:"resume_text,omitempty"`
}

// ScoredAnswer is the per-answer record folded into a candidate after
// scoring, matching the dashboard's report shape.
type ScoredAnswer struct {
	Question    string `bson:"question" json:"question"`
	Answer      string `bson:"answer" json:"answer"`
	Score       int    `bson:"score" json:"score"`
	TimeTaken   int    `bson:"time_taken" json:"timeTaken"`
	TimeAllowed int    `bson:"time_allowed" json:"timeAllowed"`
	Difficulty  string `bson:"difficulty" json:"difficulty"`
	Feedback    string `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

// Candidate is the interviewer-facing record of one candidate.
type Candidate struct {
	ID           string         `bson:"_id,omitempty" json:"id"`
	Name         string         `bson:"name" json:"name"`
	Email        string         `bson:"email" json:"email"`
	Phone        string         `bson:"phone,omitempty" json:"phone,omitempty"`
	Position     string         `bson:"position" json:"position"`
	Experience   int            `bson:"experience" json:"experience"`
	Score        int            `bson:"score" json:"score"`
	Status       string         `bson:"status" json:"status"` // pending | in-progress | completed | rejected
	Answers      []ScoredAnswer `bson:"answers" json:"answers"`
	Summary      string         `bson:"summary" json:"summary"`
	Skills       []string       `bson:"skills,omitempty" json:"skills,omitempty"`
	Notes        string         `bson:"notes,omitempty" json:"notes,omitempty"`
	InterviewAt  time.Time      `bson:"interview_at" json:"interview_at"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at" json:"updated_at"`
}

// Interview is the scheduling record pairing a candidate with a
// question set.
type Interview struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	CandidateID string     `bson:"candidate_id" json:"candidate_id"`
	QuestionIDs []string   `bson:"question_ids" json:"question_ids"`
	Status      string     `bson:"status" json:"status"` // scheduled | in-progress | completed | cancelled
	StartTime   *time.Time `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime     *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}
