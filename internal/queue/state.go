package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// State is the native lifecycle state of a task.
type State string

const (
	StatePending   State = "PENDING"
	StateRunning   State = "RUNNING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
)

// ErrInvalidTransition is returned when a state change would move a task
// backwards or out of a terminal state.
var ErrInvalidTransition = errors.New("invalid task state transition")

// ErrUnknownTask is returned by a Backend that holds no record of a handle.
var ErrUnknownTask = errors.New("unknown task")

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// CanTransition reports whether a task may move from s to next. RUNNING to
// RUNNING is allowed so a redelivered task can run again.
func (s State) CanTransition(next State) bool {
	switch s {
	case "":
		return next == StatePending
	case StatePending:
		return next == StateRunning || next.Terminal()
	case StateRunning:
		return next == StateRunning || next.Terminal()
	default:
		return false
	}
}

// TaskInfo is a snapshot of a task. It is always passed by value.
type TaskInfo struct {
	ID        string          `json:"task_id"`
	Name      string          `json:"task"`
	State     State           `json:"state"`
	Error     string          `json:"error,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func checkTransition(current TaskInfo, next TaskInfo) error {
	if !current.State.CanTransition(next.State) {
		return fmt.Errorf("%w: task %s %s -> %s", ErrInvalidTransition, next.ID, stateName(current.State), next.State)
	}
	return nil
}

func stateName(s State) string {
	if s == "" {
		return "<none>"
	}
	return string(s)
}
