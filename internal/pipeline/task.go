package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"go-join-pipeline/internal/metrics"
	"go-join-pipeline/internal/model"
	"go-join-pipeline/internal/store"
)

// JoinTaskName is the queue task name of the join pipeline.
const JoinTaskName = "join_dataset"

// ErrInvalidRequest is wrapped by Submit when a join request is incomplete.
var ErrInvalidRequest = errors.New("invalid join request")

// Enqueuer hands a task to the background queue and returns its handle.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskName string, args interface{}) (string, error)
}

// Submit validates req and enqueues it as a join task. Whether the source
// dataset exists is only checked by the worker.
func Submit(ctx context.Context, q Enqueuer, req model.JoinRequest) (string, error) {
	var missing []string
	if strings.TrimSpace(req.RemoteAddress) == "" {
		missing = append(missing, "remote_address")
	}
	if strings.TrimSpace(req.OutputName) == "" {
		missing = append(missing, "output_name")
	}
	if req.BaseKey == "" {
		missing = append(missing, "base_key")
	}
	if req.IncomingKey == "" {
		missing = append(missing, "incoming_key")
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	mode, err := ParseMatchMode(req.MatchMode)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	req.MatchMode = string(mode)

	return q.Enqueue(ctx, JoinTaskName, req)
}

// Joiner runs the join pipeline: load the source dataset, fetch the remote
// records, join them and persist the result as a new dataset.
type Joiner struct {
	store   store.Store
	fetcher RemoteFetcher
	logger  *log.Logger
}

// NewJoiner wires a Joiner. A nil logger uses the standard logger.
func NewJoiner(s store.Store, f RemoteFetcher, logger *log.Logger) *Joiner {
	if logger == nil {
		logger = log.Default()
	}
	return &Joiner{store: s, fetcher: f, logger: logger}
}

// Handle decodes the task arguments and runs the join. It has the shape of a
// queue task handler; the returned records become the task result.
func (j *Joiner) Handle(ctx context.Context, taskID string, args json.RawMessage) (interface{}, error) {
	var req model.JoinRequest
	if err := json.Unmarshal(args, &req); err != nil {
		return nil, fmt.Errorf("decode join arguments: %w", err)
	}
	return j.Run(ctx, taskID, req)
}

// Run executes one join. Every failure is terminal: nothing is retried and
// on a name conflict the computed result is discarded.
func (j *Joiner) Run(ctx context.Context, taskID string, req model.JoinRequest) (result []model.Record, err error) {
	tracker := NewTracker(taskID, j.logger)
	j.logger.Printf("[TASK %s] 🚀 join dataset %d with %s into %q (%s ↔ %s)",
		taskID, req.SourceID, req.RemoteAddress, req.OutputName, req.BaseKey, req.IncomingKey)
	defer func() { tracker.Finish(err) }()

	mode, err := ParseMatchMode(req.MatchMode)
	if err != nil {
		return nil, err
	}

	// 1. Load source dataset
	tracker.StartStage(StageLoad)
	source, err := j.store.GetDataset(ctx, req.SourceID)
	if errors.Is(err, store.ErrNotFound) {
		err = &NotFoundError{ID: req.SourceID}
	}
	if err != nil {
		tracker.EndStage(StageLoad, 0, err)
		return nil, err
	}
	tracker.EndStage(StageLoad, len(source.Content), nil)

	// 2. Fetch remote records
	tracker.StartStage(StageFetch)
	incoming, err := j.fetcher.Fetch(ctx, req.RemoteAddress)
	if err != nil {
		tracker.EndStage(StageFetch, 0, err)
		return nil, err
	}
	tracker.EndStage(StageFetch, len(incoming), nil)

	// 3. Join
	tracker.StartStage(StageJoin)
	joined := JoinWithMode(source.Content, incoming, req.BaseKey, req.IncomingKey, mode)
	tracker.EndStage(StageJoin, len(joined), nil)
	metrics.RecordsEmitted(len(joined))

	// 4. Persist as a new dataset
	tracker.StartStage(StagePersist)
	created, err := j.store.CreateDataset(ctx, req.OutputName, joined)
	if errors.Is(err, store.ErrConflict) {
		err = &ConflictError{Name: req.OutputName}
	}
	if err != nil {
		tracker.EndStage(StagePersist, 0, err)
		return nil, err
	}
	tracker.EndStage(StagePersist, created.RecordCount, nil)

	j.logger.Printf("[TASK %s] 💾 stored dataset %d %q", taskID, created.ID, created.Name)
	return joined, nil
}
