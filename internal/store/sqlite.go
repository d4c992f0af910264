package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-join-pipeline/internal/model"

	"github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps datasets in a single SQLite table with the content
// serialized as a JSON array.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dbPath and ensures the schema.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY
	// between concurrent workers.
	db.SetMaxOpenConns(1)

	// Create tables if not exists
	datasetTable := `
	CREATE TABLE IF NOT EXISTS datasets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		content TEXT NOT NULL,
		record_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := db.Exec(datasetTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create datasets table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// CreateDataset stores a new dataset
func (s *SQLiteStore) CreateDataset(ctx context.Context, name string, content []model.Record) (*model.Dataset, error) {
	if content == nil {
		content = []model.Record{}
	}
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO datasets (name, content, record_count, created_at) VALUES (?, ?, ?, ?)`,
		name, string(contentJSON), len(content), now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert dataset %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read dataset id: %w", err)
	}

	return &model.Dataset{
		ID:          id,
		Name:        name,
		RecordCount: len(content),
		CreatedAt:   now,
		Content:     content,
	}, nil
}

// ListDatasets returns dataset summaries ordered by id
func (s *SQLiteStore) ListDatasets(ctx context.Context, skip, limit int) ([]model.Dataset, error) {
	skip, limit = normalizePage(skip, limit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, record_count, created_at FROM datasets ORDER BY id LIMIT ? OFFSET ?`,
		limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	datasets := []model.Dataset{}
	for rows.Next() {
		var d model.Dataset
		if err := rows.Scan(&d.ID, &d.Name, &d.RecordCount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		datasets = append(datasets, d)
	}
	return datasets, rows.Err()
}

// GetDataset fetches a dataset with its full content
func (s *SQLiteStore) GetDataset(ctx context.Context, id int64) (*model.Dataset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, content, record_count, created_at FROM datasets WHERE id = ?`, id)
	return scanDataset(row)
}

// GetDatasetByName fetches a dataset by its unique name
func (s *SQLiteStore) GetDatasetByName(ctx context.Context, name string) (*model.Dataset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, content, record_count, created_at FROM datasets WHERE name = ?`, name)
	return scanDataset(row)
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanDataset(row *sql.Row) (*model.Dataset, error) {
	var d model.Dataset
	var contentJSON string
	err := row.Scan(&d.ID, &d.Name, &contentJSON, &d.RecordCount, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if err := json.Unmarshal([]byte(contentJSON), &d.Content); err != nil {
		return nil, fmt.Errorf("decode content of dataset %d: %w", d.ID, err)
	}
	return &d, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
