package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-join-pipeline/internal/model"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// datasetRow is the gorm mapping of a dataset.
type datasetRow struct {
	ID          int64       `gorm:"primaryKey;autoIncrement"`
	Name        string      `gorm:"not null;uniqueIndex"`
	Content     recordsJSON `gorm:"not null"`
	RecordCount int         `gorm:"not null"`
	CreatedAt   time.Time
}

// recordsJSON is datatypes.JSON kept as plain json on Postgres. jsonb
// reorders object keys and drops duplicates, and record field order must
// survive the round trip.
type recordsJSON struct {
	datatypes.JSON
}

func (recordsJSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSON"
	}
	return datatypes.JSON{}.GormDBDataType(db, field)
}

func (datasetRow) TableName() string { return "datasets" }

// GormStore keeps datasets through gorm. It is used with Postgres in
// production and works with any gorm dialect that translates unique
// violations.
type GormStore struct {
	DB *gorm.DB
}

// OpenPostgres connects to Postgres and migrates the datasets table.
func OpenPostgres(dsn string) (*GormStore, error) {
	return OpenGorm(postgres.Open(dsn))
}

// OpenGorm opens a gorm connection for the given dialector and migrates the
// datasets table.
func OpenGorm(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	if err := db.AutoMigrate(&datasetRow{}); err != nil {
		return nil, fmt.Errorf("migrate datasets: %w", err)
	}
	return &GormStore{DB: db}, nil
}

func (s *GormStore) CreateDataset(ctx context.Context, name string, content []model.Record) (*model.Dataset, error) {
	if content == nil {
		content = []model.Record{}
	}
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}

	row := &datasetRow{
		Name:        name,
		Content:     recordsJSON{datatypes.JSON(contentJSON)},
		RecordCount: len(content),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert dataset %q: %w", name, err)
	}

	return &model.Dataset{
		ID:          row.ID,
		Name:        row.Name,
		RecordCount: row.RecordCount,
		CreatedAt:   row.CreatedAt,
		Content:     content,
	}, nil
}

func (s *GormStore) ListDatasets(ctx context.Context, skip, limit int) ([]model.Dataset, error) {
	skip, limit = normalizePage(skip, limit)
	var rows []datasetRow
	err := s.DB.WithContext(ctx).
		Select("id", "name", "record_count", "created_at").
		Order("id").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	datasets := make([]model.Dataset, 0, len(rows))
	for _, r := range rows {
		datasets = append(datasets, model.Dataset{
			ID:          r.ID,
			Name:        r.Name,
			RecordCount: r.RecordCount,
			CreatedAt:   r.CreatedAt,
		})
	}
	return datasets, nil
}

func (s *GormStore) GetDataset(ctx context.Context, id int64) (*model.Dataset, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormStore) GetDatasetByName(ctx context.Context, name string) (*model.Dataset, error) {
	return s.first(ctx, "name = ?", name)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) first(ctx context.Context, query string, arg interface{}) (*model.Dataset, error) {
	var row datasetRow
	if err := s.DB.WithContext(ctx).First(&row, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	d := &model.Dataset{
		ID:          row.ID,
		Name:        row.Name,
		RecordCount: row.RecordCount,
		CreatedAt:   row.CreatedAt,
	}
	if err := json.Unmarshal(row.Content.JSON, &d.Content); err != nil {
		return nil, fmt.Errorf("decode content of dataset %d: %w", row.ID, err)
	}
	return d, nil
}
