package models

// GenerationResult is the raw output of one LLM call.
type GenerationResult struct {
	Text           string `json:"text"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	ProcessingTime int    `json:"processing_time_ms"`
}

// ScoringMetadata carries provenance for a scoring result.
type ScoringMetadata struct {
	ProcessingTime int    `json:"processing_time_ms"`
	Provider       string `json:"provider"`
	Model          string `json:"model,omitempty"`
	Source         string `json:"source"` // "ai" | "fallback"
}

// ScoreResponse wraps a score result for the HTTP surface.
type ScoreResponse struct {
	Result    ScoreResult     `json:"result"`
	RequestID string          `json:"request_id"`
	Metadata  ScoringMetadata `json:"metadata"`
}

// QuestionsResponse lists a generated or stored question set.
type QuestionsResponse struct {
	Total     int                 `json:"total"`
	Items     []InterviewQuestion `json:"items"`
	RequestID string              `json:"request_id,omitempty"`
	Source    string              `json:"source,omitempty"` // "ai" | "fallback"
}

// SummaryResponse wraps a generated interview summary.
type SummaryResponse struct {
	Summary   string          `json:"summary"`
	RequestID string          `json:"request_id"`
	Metadata  ScoringMetadata `json:"metadata"`
}

// CandidatesResponse is a paginated candidate listing.
type CandidatesResponse struct {
	Total int         `json:"total"`
	Items []Candidate `json:"items"`
}

// CandidateStats aggregates dashboard numbers across candidates.
type CandidateStats struct {
	Pending      int64   `json:"pending"`
	InProgress   int64   `json:"in_progress"`
	Completed    int64   `json:"completed"`
	Rejected     int64   `json:"rejected"`
	AverageScore float64 `json:"average_score"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}
