package models

import "time"

// ScoreRecord is the audit trail row written after every scoring run,
// AI or fallback. Records are exported to JSONL for offline review of
// scoring quality.
type ScoreRecord struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RequestID   string `gorm:"index" json:"request_id"`
	SessionID   string `gorm:"index" json:"session_id"`
	CandidateID string `json:"candidate_id"`
	QuestionID  string `json:"question_id"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Difficulty  string `json:"difficulty"`
	Score       int    `json:"score"`
	Source      string `json:"source"` // "ai" | "fallback"
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	AutoSubmit  bool   `json:"auto_submit"`
	TimeTaken   int    `json:"time_taken"`
	TimeLimit   int    `json:"time_limit"`

	ScoredAt   time.Time  `json:"scored_at"`
	Exported   bool       `gorm:"index" json:"exported"`
	ExportedAt *time.Time `json:"exported_at,omitempty"`
}

// ScoreContext is the in-flight context of a scoring run, cached from
// submission until the result is either recorded or discarded as
// stale.
type ScoreContext struct {
	RequestID   string
	SessionID   string
	CandidateID string
	QuestionID  string
	Answer      string
	AutoSubmit  bool
	StartedAt   time.Time
}
