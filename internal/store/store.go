package store

import (
	"context"
	"errors"

	"go-join-pipeline/internal/model"
)

var (
	// ErrNotFound is returned when no dataset has the requested id or name.
	ErrNotFound = errors.New("dataset not found")
	// ErrConflict is returned when a dataset name is already taken.
	ErrConflict = errors.New("dataset with this name already exists")
)

// DefaultListLimit is used when a listing asks for no explicit limit.
const DefaultListLimit = 100

// Store persists named datasets. Every write creates a new dataset in a
// single atomic insert; there is no update path.
type Store interface {
	CreateDataset(ctx context.Context, name string, content []model.Record) (*model.Dataset, error)
	ListDatasets(ctx context.Context, skip, limit int) ([]model.Dataset, error)
	GetDataset(ctx context.Context, id int64) (*model.Dataset, error)
	GetDatasetByName(ctx context.Context, name string) (*model.Dataset, error)
	Close() error
}

func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return skip, limit
}
