package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"go-join-pipeline/internal/archive"
	"go-join-pipeline/internal/model"
	"go-join-pipeline/internal/pipeline"
	"go-join-pipeline/internal/store"
)

// maxUploadSize bounds the multipart body of an upload.
const maxUploadSize = 64 << 20

// archiveTimeout bounds the best-effort copy of an upload to the archive.
const archiveTimeout = 30 * time.Second

// UploadDataset stores an uploaded CSV file as a new dataset
// @Summary Upload a dataset
// @Description Parse a CSV file and store its rows as a new named dataset
// @Tags datasets
// @Accept multipart/form-data
// @Produce json
// @Param name query string true "Dataset name"
// @Param file formData file true "CSV file"
// @Success 200 {object} model.Dataset "Dataset created"
// @Failure 400 {string} string "Missing name or file, or malformed CSV"
// @Failure 409 {string} string "Dataset name already exists"
// @Failure 500 {string} string "Internal server error"
// @Router /datasets [post]
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "Query parameter name is required", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Multipart field file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	// 1. Parse and validate
	records, err := pipeline.ParseCSV(bytes.NewReader(raw))
	var verr *pipeline.ValidationError
	if errors.As(err, &verr) {
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Failed to parse upload", http.StatusInternalServerError)
		return
	}

	// 2. Store
	dataset, err := h.Store.CreateDataset(r.Context(), name, records)
	if errors.Is(err, store.ErrConflict) {
		http.Error(w, fmt.Sprintf("Dataset %q already exists", name), http.StatusConflict)
		return
	}
	if err != nil {
		h.Logger.Printf("❌ store dataset %q: %v", name, err)
		http.Error(w, "Failed to save dataset", http.StatusInternalServerError)
		return
	}
	h.Logger.Printf("📥 stored dataset %d %q with %d records", dataset.ID, dataset.Name, dataset.RecordCount)

	// 3. Archive the raw file
	h.archive(r.Context(), dataset, raw)

	writeJSON(w, http.StatusOK, dataset.Summary())
}

func (h *Handler) archive(ctx context.Context, d *model.Dataset, raw []byte) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	key := archive.DatasetKey(d.ID, d.Name)
	if err := h.Archive.Put(ctx, key, raw, "text/csv"); err != nil {
		h.Logger.Printf("⚠️ archive dataset %d to %s: %v", d.ID, key, err)
	}
}

// ListDatasets lists stored datasets without their content
// @Summary List datasets
// @Description Get dataset summaries ordered by id
// @Tags datasets
// @Produce json
// @Param skip query int false "Number of datasets to skip" default(0)
// @Param limit query int false "Maximum number of datasets" default(100)
// @Param name query string false "Only the dataset with this name"
// @Success 200 {array} model.Dataset "List of datasets"
// @Failure 400 {string} string "Invalid paging parameters"
// @Failure 500 {string} string "Internal server error"
// @Router /datasets [get]
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil || skip < 0 {
		http.Error(w, "Invalid skip", http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", store.DefaultListLimit)
	if err != nil || limit < 0 {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}

	if name := r.URL.Query().Get("name"); name != "" {
		d, err := h.Store.GetDatasetByName(r.Context(), name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeJSON(w, http.StatusOK, []model.Dataset{})
		case err != nil:
			http.Error(w, "Failed to fetch datasets", http.StatusInternalServerError)
		default:
			writeJSON(w, http.StatusOK, []model.Dataset{d.Summary()})
		}
		return
	}

	datasets, err := h.Store.ListDatasets(r.Context(), skip, limit)
	if err != nil {
		http.Error(w, "Failed to fetch datasets", http.StatusInternalServerError)
		return
	}
	for i := range datasets {
		datasets[i] = datasets[i].Summary()
	}
	if datasets == nil {
		datasets = []model.Dataset{}
	}
	writeJSON(w, http.StatusOK, datasets)
}

// GetDataset returns the content of a dataset
// @Summary Get dataset content
// @Description Retrieve the records of a dataset as a JSON array
// @Tags datasets
// @Produce json
// @Param id path int true "Dataset ID"
// @Success 200 {array} object "Dataset records"
// @Failure 400 {string} string "Invalid dataset ID"
// @Failure 404 {string} string "Dataset not found"
// @Router /datasets/{id} [get]
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDataset(w, r, "")
	if !ok {
		return
	}
	content := d.Content
	if content == nil {
		content = []model.Record{}
	}
	writeJSON(w, http.StatusOK, content)
}

// ExportDataset downloads a dataset as CSV
// @Summary Export dataset
// @Description Download the records of a dataset as a CSV file
// @Tags datasets
// @Produce text/csv
// @Param id path int true "Dataset ID"
// @Success 200 {file} file "CSV file"
// @Failure 400 {string} string "Invalid dataset ID"
// @Failure 404 {string} string "Dataset not found"
// @Router /datasets/{id}/export [get]
func (h *Handler) ExportDataset(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDataset(w, r, "/export")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if _, err := pipeline.WriteCSV(&buf, d.Content); err != nil {
		http.Error(w, "Failed to export dataset", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(archive.DatasetKey(d.ID, d.Name))))
	w.Write(buf.Bytes())
}

func (h *Handler) loadDataset(w http.ResponseWriter, r *http.Request, suffix string) (*model.Dataset, bool) {
	id, ok := datasetID(r, suffix)
	if !ok {
		http.Error(w, "Invalid dataset ID", http.StatusBadRequest)
		return nil, false
	}
	d, err := h.Store.GetDataset(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, (&pipeline.NotFoundError{ID: id}).Error(), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, "Failed to fetch dataset", http.StatusInternalServerError)
		return nil, false
	}
	return d, true
}
