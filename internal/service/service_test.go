package service

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"daily-report/internal/model"
	"daily-report/internal/repository"
)

type fixture struct {
	db      *gorm.DB
	lookups *repository.LookupRepository
	logs    *repository.TaskLogRepository
}

func newFixture(t *testing.T, seed bool) fixture {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "task.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	f := fixture{
		db:      db,
		lookups: repository.NewLookupRepository(db),
		logs:    repository.NewTaskLogRepository(db),
	}
	if seed {
		ctx := context.Background()
		if _, err := f.lookups.AddEmployees(ctx, []string{"Sato", "Abe"}); err != nil {
			t.Fatalf("seed employees: %v", err)
		}
		if _, err := f.lookups.AddCategories(ctx, []model.TaskCategory{{Category: "DataEntry", Group: "BackOffice"}}); err != nil {
			t.Fatalf("seed categories: %v", err)
		}
	}
	return f
}

func (f fixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&model.TaskLogEntry{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
