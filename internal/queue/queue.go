package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is what travels through the broker.
type Message struct {
	TaskID     string          `json:"task_id"`
	TaskName   string          `json:"task"`
	Args       json.RawMessage `json:"args"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Delivery is a message handed to a worker. Exactly one of Ack or Nack must
// be called.
type Delivery struct {
	Message Message
	Ack     func() error
	Nack    func(requeue bool) error
}

// Broker transports task messages with at-least-once delivery.
type Broker interface {
	Publish(ctx context.Context, msg Message) error
	Consume(ctx context.Context) (<-chan Delivery, error)
	Close() error
}

// Backend stores task state and results. Implementations must apply
// Transition atomically and reject changes CanTransition forbids.
type Backend interface {
	Get(ctx context.Context, taskID string) (TaskInfo, error)
	Transition(ctx context.Context, info TaskInfo) error
	Close() error
}

// Client submits tasks and reads their state. It is created once per
// process and shared.
type Client struct {
	broker  Broker
	backend Backend
	retry   RetryConfig
}

// NewClient builds a client. The zero RetryConfig uses DefaultRetryConfig.
func NewClient(broker Broker, backend Backend, retry RetryConfig) *Client {
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig
	}
	return &Client{broker: broker, backend: backend, retry: retry}
}

// Enqueue records a PENDING task and publishes it. The returned handle is
// used to poll Status.
func (c *Client) Enqueue(ctx context.Context, taskName string, args interface{}) (string, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode task arguments: %w", err)
	}

	msg := Message{
		TaskID:     uuid.New().String(),
		TaskName:   taskName,
		Args:       argsJSON,
		EnqueuedAt: time.Now().UTC(),
	}

	if err := c.backend.Transition(ctx, TaskInfo{
		ID:        msg.TaskID,
		Name:      taskName,
		State:     StatePending,
		UpdatedAt: msg.EnqueuedAt,
	}); err != nil {
		return "", fmt.Errorf("record task: %w", err)
	}

	if err := publishWithRetry(ctx, c.broker, msg, c.retry); err != nil {
		// no worker will ever see it, so it must not read as PENDING
		c.backend.Transition(context.WithoutCancel(ctx), TaskInfo{
			ID:        msg.TaskID,
			Name:      taskName,
			State:     StateFailed,
			Error:     "task was never queued: " + err.Error(),
			UpdatedAt: time.Now().UTC(),
		})
		return "", fmt.Errorf("publish task: %w", err)
	}
	return msg.TaskID, nil
}

// Status returns the current snapshot of a task. Handles the backend has no
// record of, including expired ones, read as PENDING.
func (c *Client) Status(ctx context.Context, taskID string) (TaskInfo, error) {
	info, err := c.backend.Get(ctx, taskID)
	if errors.Is(err, ErrUnknownTask) {
		return TaskInfo{ID: taskID, State: StatePending}, nil
	}
	if err != nil {
		return TaskInfo{}, err
	}
	return info, nil
}
