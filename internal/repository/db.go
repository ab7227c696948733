package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"daily-report/internal/model"
)

// DefaultPath is used when DATABASE_PATH is empty.
const DefaultPath = "task.db"

// busyTimeoutMillis lets a form submission wait for a concurrent CLI import
// instead of failing with "database is locked".
const busyTimeoutMillis = 5000

// referenceTables are read by the form but only ever created by the import command.
var referenceTables = []string{
	model.Employee{}.TableName(),
	model.TaskCategory{}.TableName(),
}

// NewDB opens the SQLite report file at path and makes sure task_log exists.
// Reference tables are never created here; a missing one is only logged.
func NewDB(path string) (*gorm.DB, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := ensureReportDir(path); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(reportDSN(path)), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "", log.LstdFlags),
			logger.Config{
				SlowThreshold:             500 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("open report db %q: %w", path, err)
	}

	if err := db.AutoMigrate(&model.TaskLogEntry{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", model.TaskLogEntry{}.TableName(), err)
	}
	log.Printf("[info] report db %s ready (%s)", path, model.TaskLogEntry{}.TableName())

	for _, table := range MissingReferenceTables(db) {
		log.Printf("[warn] reference table %s is missing; run the import command before serving the form", table)
	}
	return db, nil
}

// MissingReferenceTables lists the reference tables the form needs but the file lacks.
func MissingReferenceTables(db *gorm.DB) []string {
	var missing []string
	for _, table := range referenceTables {
		if !db.Migrator().HasTable(table) {
			missing = append(missing, table)
		}
	}
	return missing
}

// reportDSN adds driver options to a bare file path. DSNs that already carry a
// query string are passed through as given.
func reportDSN(path string) string {
	if strings.Contains(path, "?") || isMemoryDSN(path) {
		return path
	}
	return fmt.Sprintf("%s?_busy_timeout=%d", path, busyTimeoutMillis)
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// ensureReportDir creates the directory holding the report file.
func ensureReportDir(path string) error {
	if isMemoryDSN(path) {
		return nil
	}
	file, _, _ := strings.Cut(strings.TrimPrefix(path, "file:"), "?")
	dir := filepath.Dir(file)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir %q: %w", dir, err)
	}
	return nil
}
