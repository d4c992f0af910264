package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"
)

// HandlerFunc runs one task. Its result is stored as JSON when it succeeds.
type HandlerFunc func(ctx context.Context, taskID string, args json.RawMessage) (interface{}, error)

// Worker consumes task messages and runs them on a fixed pool of goroutines.
type Worker struct {
	broker      Broker
	backend     Backend
	concurrency int
	handlers    map[string]HandlerFunc
	logger      *log.Logger
}

// NewWorker builds a worker pool. Concurrency below 1 is treated as 1.
func NewWorker(broker Broker, backend Backend, concurrency int, logger *log.Logger) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Worker{
		broker:      broker,
		backend:     backend,
		concurrency: concurrency,
		handlers:    make(map[string]HandlerFunc),
		logger:      logger,
	}
}

// Register binds a handler to a task name. It must be called before Run.
func (w *Worker) Register(taskName string, fn HandlerFunc) {
	w.handlers[taskName] = fn
}

// Run consumes until ctx is cancelled or the broker closes its delivery
// channel. A task that has started always runs to its end; cancelling ctx
// only stops new deliveries from being taken.
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.broker.Consume(ctx)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	w.logger.Printf("👷 worker pool started with %d workers", w.concurrency)
	var wg sync.WaitGroup
	wg.Add(w.concurrency)
	for i := 0; i < w.concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						return
					}
					w.process(context.WithoutCancel(ctx), workerID, d)
				}
			}
		}(i)
	}
	wg.Wait()
	w.logger.Printf("👷 worker pool stopped")
	return nil
}

func (w *Worker) process(ctx context.Context, workerID int, d Delivery) {
	msg := d.Message

	current, err := w.backend.Get(ctx, msg.TaskID)
	switch {
	case errors.Is(err, ErrUnknownTask):
		// the PENDING record expired or was never written
		current = TaskInfo{ID: msg.TaskID, Name: msg.TaskName, State: StatePending, UpdatedAt: time.Now().UTC()}
		if err := w.backend.Transition(ctx, current); err != nil {
			w.requeue(d, fmt.Errorf("record pending state: %w", err))
			return
		}
	case err != nil:
		w.requeue(d, fmt.Errorf("read task state: %w", err))
		return
	case current.State.Terminal():
		w.logger.Printf("[TASK %s] already %s, skipping redelivery", msg.TaskID, current.State)
		w.ack(d)
		return
	}

	if err := w.backend.Transition(ctx, TaskInfo{
		ID:        msg.TaskID,
		Name:      msg.TaskName,
		State:     StateRunning,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		w.requeue(d, fmt.Errorf("record running state: %w", err))
		return
	}
	w.logger.Printf("[TASK %s] worker %d running %s", msg.TaskID, workerID, msg.TaskName)

	result, runErr := w.execute(ctx, msg)

	final := TaskInfo{ID: msg.TaskID, Name: msg.TaskName, UpdatedAt: time.Now().UTC()}
	if runErr == nil {
		resultJSON, err := json.Marshal(result)
		if err != nil {
			runErr = fmt.Errorf("encode task result: %w", err)
		} else {
			final.State = StateSucceeded
			final.Result = resultJSON
		}
	}
	if runErr != nil {
		final.State = StateFailed
		final.Error = runErr.Error()
	}

	if err := w.backend.Transition(ctx, final); err != nil {
		w.requeue(d, fmt.Errorf("record %s state: %w", final.State, err))
		return
	}
	w.ack(d)
}

func (w *Worker) execute(ctx context.Context, msg Message) (result interface{}, err error) {
	fn, ok := w.handlers[msg.TaskName]
	if !ok {
		return nil, fmt.Errorf("no handler registered for task %q", msg.TaskName)
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Printf("[TASK %s] panic: %v\n%s", msg.TaskID, r, debug.Stack())
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn(ctx, msg.TaskID, msg.Args)
}

func (w *Worker) ack(d Delivery) {
	if d.Ack == nil {
		return
	}
	if err := d.Ack(); err != nil {
		w.logger.Printf("[TASK %s] ack failed: %v", d.Message.TaskID, err)
	}
}

func (w *Worker) requeue(d Delivery, cause error) {
	w.logger.Printf("[TASK %s] ❌ %v; requeueing", d.Message.TaskID, cause)
	if d.Nack == nil {
		return
	}
	if err := d.Nack(true); err != nil {
		w.logger.Printf("[TASK %s] nack failed: %v", d.Message.TaskID, err)
	}
}
