package model

// External task status vocabulary returned to API clients.
const (
	TaskStatusPending   = "Pending"
	TaskStatusCompleted = "Completed"
	TaskStatusFailed    = "Failed"
)

// TaskStatus is the externally visible state of a submitted join.
type TaskStatus struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Terminal reports whether no further status change can happen.
func (s TaskStatus) Terminal() bool {
	return s.Status == TaskStatusCompleted || s.Status == TaskStatusFailed
}

// JoinRequest describes a join submitted through the API.
type JoinRequest struct {
	SourceID      int64  `json:"source_id"`
	RemoteAddress string `json:"remote_address"`
	OutputName    string `json:"output_name"`
	BaseKey       string `json:"base_key"`
	IncomingKey   string `json:"incoming_key"`
	MatchMode     string `json:"match_mode,omitempty"`
}

// JoinAccepted is the response to a join submission.
type JoinAccepted struct {
	TaskID string `json:"task_id"`
}
