// Package taskstatus translates native queue task states into the status
// vocabulary API clients see.
package taskstatus

import (
	"context"

	"go-join-pipeline/internal/model"
	"go-join-pipeline/internal/queue"
)

// StatusReader reads task snapshots without changing them.
type StatusReader interface {
	Status(ctx context.Context, taskID string) (queue.TaskInfo, error)
}

// Gateway answers status polls. Polling never changes task state.
type Gateway struct {
	tasks StatusReader
}

func NewGateway(tasks StatusReader) *Gateway {
	return &Gateway{tasks: tasks}
}

// Lookup returns the external status of a task.
func (g *Gateway) Lookup(ctx context.Context, taskID string) (model.TaskStatus, error) {
	info, err := g.tasks.Status(ctx, taskID)
	if err != nil {
		return model.TaskStatus{}, err
	}
	return Describe(taskID, info), nil
}

// Describe maps a native state: PENDING is Pending, SUCCEEDED is Completed,
// FAILED is Failed with its error, and any other state is reported under
// its native name.
func Describe(taskID string, info queue.TaskInfo) model.TaskStatus {
	switch info.State {
	case queue.StatePending:
		return model.TaskStatus{TaskID: taskID, Status: model.TaskStatusPending}
	case queue.StateSucceeded:
		return model.TaskStatus{TaskID: taskID, Status: model.TaskStatusCompleted}
	case queue.StateFailed:
		return model.TaskStatus{TaskID: taskID, Status: model.TaskStatusFailed, Error: info.Error}
	default:
		return model.TaskStatus{TaskID: taskID, Status: string(info.State)}
	}
}
