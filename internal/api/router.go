package api

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"go-join-pipeline/internal/api/handler"
	"go-join-pipeline/internal/metrics"
	"go-join-pipeline/pkg/router"
)

// RegisterRoutes wires the API, metrics and swagger endpoints onto r.
func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.Observe(metrics.HTTPRequest)
	r.Mount("/metrics", promhttp.Handler())
	r.Mount("/swagger/", httpSwagger.WrapHandler)

	r.POST("/api/v1/datasets", h.UploadDataset)
	r.GET("/api/v1/datasets", h.ListDatasets)
	// More specific routes first
	r.GET("/api/v1/datasets/*/export", h.ExportDataset)
	r.POST("/api/v1/datasets/*/join", h.SubmitJoin)
	r.GET("/api/v1/datasets/*", h.GetDataset)

	r.GET("/api/v1/tasks/*/result", h.GetTaskResult)
	r.GET("/api/v1/tasks/*", h.GetTaskStatus)
}

// NewServer returns a router with every route registered.
func NewServer(h *handler.Handler) *router.Router {
	r := router.New()
	r.SetLogger(h.Logger)
	RegisterRoutes(r, h)
	return r
}
