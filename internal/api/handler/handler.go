package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"go-join-pipeline/internal/archive"
	"go-join-pipeline/internal/queue"
	"go-join-pipeline/internal/store"
	"go-join-pipeline/internal/taskstatus"
)

// TaskQueue submits joins and reads their native state.
type TaskQueue interface {
	Enqueue(ctx context.Context, taskName string, args interface{}) (string, error)
	Status(ctx context.Context, taskID string) (queue.TaskInfo, error)
}

// Handler serves the dataset and task endpoints.
type Handler struct {
	Store   store.Store
	Tasks   TaskQueue
	Status  *taskstatus.Gateway
	Archive archive.Archiver
	Logger  *log.Logger
}

// New builds a Handler. A nil archiver keeps no copies of uploads.
func New(s store.Store, tasks TaskQueue, status *taskstatus.Gateway, a archive.Archiver, logger *log.Logger) *Handler {
	if a == nil {
		a = archive.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	if status == nil {
		status = taskstatus.NewGateway(tasks)
	}
	return &Handler{Store: s, Tasks: tasks, Status: status, Archive: a, Logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// pathParam extracts the segment between prefix and suffix of the request path.
func pathParam(r *http.Request, prefix, suffix string) (string, bool) {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) || len(path) < len(prefix)+len(suffix) {
		return "", false
	}
	id := path[len(prefix) : len(path)-len(suffix)]
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func datasetID(r *http.Request, suffix string) (int64, bool) {
	raw, ok := pathParam(r, "/api/v1/datasets/", suffix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
