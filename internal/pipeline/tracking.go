package pipeline

import (
	"log"
	"sync"
	"time"

	"go-join-pipeline/internal/metrics"
)

// Join pipeline stages, in execution order.
const (
	StageLoad    = "load"
	StageFetch   = "fetch"
	StageJoin    = "join"
	StagePersist = "persist"
)

// StageMetrics is the timing of one stage of a single task.
type StageMetrics struct {
	StageName        string        `json:"stage_name"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	Duration         time.Duration `json:"duration"`
	RecordsProcessed int           `json:"records_processed"`
	Failed           bool          `json:"failed"`
}

// Tracker times the stages of one join task, logs them and reports them to
// prometheus.
type Tracker struct {
	TaskID    string
	StartTime time.Time

	mu     sync.Mutex
	stages []StageMetrics
	logger *log.Logger
}

// NewTracker starts tracking a task.
func NewTracker(taskID string, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		TaskID:    taskID,
		StartTime: time.Now(),
		logger:    logger,
	}
}

// StartStage marks the beginning of a stage.
func (t *Tracker) StartStage(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages = append(t.stages, StageMetrics{StageName: stage, StartTime: time.Now()})
	t.logger.Printf("[TASK %s] ▶️ %s started", t.TaskID, stage)
}

// EndStage closes the most recent stage with the given name.
func (t *Tracker) EndStage(stage string, recordsProcessed int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.stages) - 1; i >= 0; i-- {
		s := &t.stages[i]
		if s.StageName != stage || !s.EndTime.IsZero() {
			continue
		}
		s.EndTime = time.Now()
		s.Duration = s.EndTime.Sub(s.StartTime)
		s.RecordsProcessed = recordsProcessed
		s.Failed = err != nil
		metrics.StageFinished(stage, s.Duration)
		if err != nil {
			t.logger.Printf("[TASK %s] ❌ %s failed after %v: %v", t.TaskID, stage, s.Duration, err)
		} else {
			t.logger.Printf("[TASK %s] ✅ %s done: %d records in %v", t.TaskID, stage, recordsProcessed, s.Duration)
		}
		return
	}
}

// Finish records the terminal outcome of the task.
func (t *Tracker) Finish(err error) {
	d := time.Since(t.StartTime)
	if err != nil {
		metrics.TaskFinished("failed", d)
		t.logger.Printf("[TASK %s] 🏁 failed in %v: %v", t.TaskID, d, err)
		return
	}
	metrics.TaskFinished("succeeded", d)
	t.logger.Printf("[TASK %s] 🏁 completed in %v", t.TaskID, d)
}

// Stages returns a copy of the recorded stages.
func (t *Tracker) Stages() []StageMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StageMetrics, len(t.stages))
	copy(out, t.stages)
	return out
}
