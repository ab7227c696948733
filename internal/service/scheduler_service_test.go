package service

import (
	"testing"
	"time"
)

func TestScheduleRejectsInvalidSpecs(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	for _, spec := range []string{"", "  ", "every day", "0 61 * * * *"} {
		if _, err := s.Schedule(spec, func() {}); err == nil {
			t.Fatalf("expected error for %q", spec)
		}
	}
}

func TestScheduleComputesNextRun(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	id, err := s.Schedule("0 0 18 * * *", func() {})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	s.Start()
	defer s.Stop()

	next := s.Next(id)
	if next.IsZero() {
		t.Fatalf("expected next run to be set")
	}
	if next.Hour() != 18 || next.Minute() != 0 {
		t.Fatalf("next run at %v, want 18:00", next)
	}
}
