package entity

type CallbackEventType string

const (
	CallbackEventTypeRunCompleted CallbackEventType = "run_completed"
	CallbackEventTypeRunFailed    CallbackEventType = "run_failed"
)

// CallbackEvent is the body posted to a run's callback URL.
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	Timestamp string            `json:"timestamp"`
	Data      any               `json:"data"`
}

type CallbackRunData struct {
	SessionID    string       `json:"session_id"`
	RunID        string       `json:"run_id"`
	AppendedRows int          `json:"appended_rows"`
	TotalRows    int          `json:"total_rows"`
	Failures     []TagFailure `json:"failures"`
}

type CallbackErrorData struct {
	SessionID string               `json:"session_id"`
	Error     CallbackErrorDetails `json:"error"`
}

type CallbackErrorDetails struct {
	Message string `json:"message"`
}
