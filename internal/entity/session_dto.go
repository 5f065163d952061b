package entity

import "time"

type CreateSessionRequest struct {
	Case       *CaseTemplate `json:"case,omitempty"`
	Directions []string      `json:"directions,omitempty"`
}

type AddDirectionRequest struct {
	Direction string `json:"direction"`
}

type AddDirectionResponse struct {
	Added      bool     `json:"added"`
	Directions []string `json:"directions"`
}

type RunRequest struct {
	// Directions overrides the session direction set when not empty.
	Directions []string `json:"directions,omitempty"`
	// CallbackURL receives a run_completed or run_failed event when set.
	CallbackURL string `json:"callback_url,omitempty"`
}

type RunResponse struct {
	RunID      string           `json:"run_id"`
	Records    []Recommendation `json:"records"`
	Failures   []TagFailure     `json:"failures"`
	TotalRows  int              `json:"total_rows"`
	DurationMs int64            `json:"duration_ms"`
}

type ExtractRequest struct {
	Text string `json:"text"`
}

type ExtractResponse struct {
	Strategy string           `json:"strategy"`
	Records  []Recommendation `json:"records"`
}

type PublishResponse struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Range         string `json:"range"`
	UpdatedRows   int    `json:"updated_rows"`
}

type SessionDTO struct {
	ID         string           `json:"id"`
	Case       CaseTemplate     `json:"case"`
	Directions []string         `json:"directions"`
	Results    []Recommendation `json:"results"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}
