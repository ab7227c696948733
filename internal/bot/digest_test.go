package bot

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"daily-report/internal/model"
	"daily-report/internal/repository"
	"daily-report/internal/service"
)

func TestSendDigest(t *testing.T) {
	ctx := context.Background()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "task.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	logs := repository.NewTaskLogRepository(db)
	if err := logs.Create(ctx, &model.TaskLogEntry{LogDate: "2024-06-01", Employee: "Abe", Minutes: 90}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := &recordingNotifier{}
	digests := service.NewDigestService(logs, time.UTC)
	if err := SendDigest(ctx, digests, rec, "2024-06-01"); err != nil {
		t.Fatalf("send digest: %v", err)
	}
	if len(rec.messages) != 1 || !strings.Contains(rec.messages[0], "Abe: 1h 30m") {
		t.Fatalf("unexpected messages: %q", rec.messages)
	}
}
