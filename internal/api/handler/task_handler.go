package handler

import (
	"errors"
	"fmt"
	"net/http"

	"go-join-pipeline/internal/model"
	"go-join-pipeline/internal/pipeline"
	"go-join-pipeline/internal/queue"
	"go-join-pipeline/internal/taskstatus"
)

// SubmitJoin queues a join of a stored dataset with a remote JSON array
// @Summary Join a dataset with remote records
// @Description Queue a background join. The output is stored as a new dataset; poll the returned task for its outcome.
// @Tags datasets
// @Produce json
// @Param id path int true "Source dataset ID"
// @Param remote_address query string true "URL returning a JSON array of objects"
// @Param output_name query string true "Name of the dataset to create"
// @Param base_key query string true "Join field in the source dataset"
// @Param incoming_key query string true "Join field in the remote records"
// @Param match_mode query string false "Key comparison: string or typed" default(string)
// @Success 202 {object} model.JoinAccepted "Join queued"
// @Failure 400 {string} string "Missing or invalid parameters"
// @Failure 500 {string} string "Task could not be queued"
// @Router /datasets/{id}/join [post]
func (h *Handler) SubmitJoin(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(r, "/join")
	if !ok {
		http.Error(w, "Invalid dataset ID", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	req := model.JoinRequest{
		SourceID:      id,
		RemoteAddress: q.Get("remote_address"),
		OutputName:    q.Get("output_name"),
		BaseKey:       q.Get("base_key"),
		IncomingKey:   q.Get("incoming_key"),
		MatchMode:     q.Get("match_mode"),
	}

	taskID, err := pipeline.Submit(r.Context(), h.Tasks, req)
	if errors.Is(err, pipeline.ErrInvalidRequest) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.Logger.Printf("❌ enqueue join of dataset %d: %v", id, err)
		http.Error(w, "Failed to queue join task", http.StatusInternalServerError)
		return
	}

	h.Logger.Printf("[TASK %s] 📨 queued join of dataset %d into %q", taskID, id, req.OutputName)
	writeJSON(w, http.StatusAccepted, model.JoinAccepted{TaskID: taskID})
}

// GetTaskStatus reports the status of a join task
// @Summary Get task status
// @Description Poll a join task. Unknown ids read as Pending.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} model.TaskStatus "Task status"
// @Failure 400 {string} string "Invalid task ID"
// @Failure 500 {string} string "Internal server error"
// @Router /tasks/{id} [get]
func (h *Handler) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathParam(r, "/api/v1/tasks/", "")
	if !ok {
		http.Error(w, "Task ID is required", http.StatusBadRequest)
		return
	}

	status, err := h.Status.Lookup(r.Context(), taskID)
	if err != nil {
		h.Logger.Printf("[TASK %s] ❌ status lookup: %v", taskID, err)
		http.Error(w, "Failed to fetch task status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// GetTaskResult returns the joined records of a completed task
// @Summary Get task result
// @Description Retrieve the joined records produced by a completed join task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {array} object "Joined records"
// @Failure 400 {string} string "Invalid task ID"
// @Failure 409 {string} string "Task has not completed"
// @Failure 500 {string} string "Internal server error"
// @Router /tasks/{id}/result [get]
func (h *Handler) GetTaskResult(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathParam(r, "/api/v1/tasks/", "/result")
	if !ok {
		http.Error(w, "Task ID is required", http.StatusBadRequest)
		return
	}

	info, err := h.Tasks.Status(r.Context(), taskID)
	if err != nil {
		http.Error(w, "Failed to fetch task", http.StatusInternalServerError)
		return
	}
	if info.State != queue.StateSucceeded {
		status := taskstatus.Describe(taskID, info)
		msg := fmt.Sprintf("Task %s is %s", taskID, status.Status)
		if status.Error != "" {
			msg += ": " + status.Error
		}
		http.Error(w, msg, http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(info.Result)
}
