package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go-join-pipeline/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLiteStore(t *testing.T) Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "datasets.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func openGormStore(t *testing.T) Store {
	t.Helper()
	s, err := OpenGorm(sqlite.Open(filepath.Join(t.TempDir(), "datasets-gorm.db")))
	if err != nil {
		t.Fatalf("OpenGorm: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	stores := []struct {
		name string
		open func(t *testing.T) Store
	}{
		{"sqlite", openSQLiteStore},
		{"gorm", openGormStore},
	}
	for _, tc := range stores {
		t.Run(tc.name, func(t *testing.T) {
			fn(t, tc.open(t))
		})
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		content := []model.Record{
			model.NewRecord("id", "1", "score", 3.5, "tags", []string{"a"}),
			model.NewRecord("id", "2", "extra", nil),
		}

		created, err := s.CreateDataset(ctx, "people", content)
		if err != nil {
			t.Fatalf("CreateDataset: %v", err)
		}
		if created.ID == 0 || created.Name != "people" || created.RecordCount != 2 {
			t.Fatalf("unexpected dataset: %+v", created)
		}

		got, err := s.GetDataset(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetDataset: %v", err)
		}
		if len(got.Content) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got.Content))
		}
		for i := range content {
			if !got.Content[i].Equal(content[i]) {
				t.Errorf("record %d: got %s, want %s", i, got.Content[i], content[i])
			}
		}

		byName, err := s.GetDatasetByName(ctx, "people")
		if err != nil {
			t.Fatalf("GetDatasetByName: %v", err)
		}
		if byName.ID != created.ID {
			t.Errorf("GetDatasetByName id = %d, want %d", byName.ID, created.ID)
		}
	})
}

func TestStore_DuplicateNameConflicts(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		original := []model.Record{model.NewRecord("id", "1")}
		first, err := s.CreateDataset(ctx, "dup", original)
		if err != nil {
			t.Fatalf("CreateDataset: %v", err)
		}

		_, err = s.CreateDataset(ctx, "dup", []model.Record{model.NewRecord("id", "other")})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}

		got, err := s.GetDatasetByName(ctx, "dup")
		if err != nil {
			t.Fatalf("GetDatasetByName: %v", err)
		}
		if got.ID != first.ID || len(got.Content) != 1 || !got.Content[0].Equal(original[0]) {
			t.Errorf("existing dataset changed: %+v", got)
		}
	})
}

func TestStore_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if _, err := s.GetDataset(ctx, 42); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetDataset: expected ErrNotFound, got %v", err)
		}
		if _, err := s.GetDatasetByName(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetDatasetByName: expected ErrNotFound, got %v", err)
		}
	})
}

func TestStore_ListPagination(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, name := range []string{"a", "b", "c"} {
			if _, err := s.CreateDataset(ctx, name, []model.Record{model.NewRecord("n", name)}); err != nil {
				t.Fatalf("CreateDataset(%s): %v", name, err)
			}
		}

		tests := []struct {
			name        string
			skip, limit int
			want        []string
		}{
			{"all", 0, 0, []string{"a", "b", "c"}},
			{"skip one", 1, 10, []string{"b", "c"}},
			{"limit one", 0, 1, []string{"a"}},
			{"past end", 5, 10, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.ListDatasets(ctx, tt.skip, tt.limit)
				if err != nil {
					t.Fatalf("ListDatasets: %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("got %d datasets, want %d", len(got), len(tt.want))
				}
				for i, d := range got {
					if d.Name != tt.want[i] {
						t.Errorf("dataset %d = %q, want %q", i, d.Name, tt.want[i])
					}
					if d.Content != nil {
						t.Errorf("listing should not carry content")
					}
					if d.RecordCount != 1 {
						t.Errorf("record_count = %d, want 1", d.RecordCount)
					}
				}
			})
		}
	})
}

func TestStore_EmptyContent(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created, err := s.CreateDataset(ctx, "empty", nil)
		if err != nil {
			t.Fatalf("CreateDataset: %v", err)
		}
		got, err := s.GetDataset(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetDataset: %v", err)
		}
		if len(got.Content) != 0 || got.RecordCount != 0 {
			t.Errorf("expected empty dataset, got %+v", got)
		}
	})
}

func TestRecordsJSON_PlainJSONOnPostgres(t *testing.T) {
	tests := []struct {
		dialector gorm.Dialector
		want      string
	}{
		{postgres.Dialector{Config: &postgres.Config{}}, "JSON"},
		{sqlite.Dialector{}, "JSON"},
	}
	for _, tt := range tests {
		db := &gorm.DB{Config: &gorm.Config{Dialector: tt.dialector}}
		if got := (recordsJSON{}).GormDBDataType(db, nil); got != tt.want {
			t.Errorf("%s column type = %q, want %q", tt.dialector.Name(), got, tt.want)
		}
	}
}

func TestStore_KeepsFieldOrder(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		var rec model.Record
		if err := rec.UnmarshalJSON([]byte(`{"zeta":1,"name":"x","alpha":{"b":1,"a":2},"id":"7"}`)); err != nil {
			t.Fatalf("UnmarshalJSON: %v", err)
		}
		created, err := s.CreateDataset(ctx, "ordered", []model.Record{rec})
		if err != nil {
			t.Fatalf("CreateDataset: %v", err)
		}
		got, err := s.GetDataset(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetDataset: %v", err)
		}
		if got.Content[0].String() != `{"zeta":1,"name":"x","alpha":{"b":1,"a":2},"id":"7"}` {
			t.Errorf("field order changed: %s", got.Content[0])
		}
	})
}
