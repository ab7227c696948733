package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"daily-report/internal/repository"
)

// DigestService builds the end-of-day minutes summary.
type DigestService struct {
	logs *repository.TaskLogRepository
	loc  *time.Location
}

func NewDigestService(logs *repository.TaskLogRepository, loc *time.Location) *DigestService {
	if loc == nil {
		loc = time.Local
	}
	return &DigestService{logs: logs, loc: loc}
}

// Today returns the current date in the digest's time zone as YYYY-MM-DD.
func (s *DigestService) Today(now time.Time) string {
	return now.In(s.loc).Format("2006-01-02")
}

// DailySummary returns Telegram-flavoured HTML listing minutes per employee
// reported for date.
func (s *DigestService) DailySummary(ctx context.Context, date string) (string, error) {
	rows, err := s.logs.MinutesByEmployee(ctx, date)
	if err != nil {
		return "", &DataAccessError{Op: "summarize reports", Err: err}
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", html.EscapeString(date)))

	if len(rows) == 0 {
		builder.WriteString("— no reports submitted\n")
		return strings.TrimSpace(builder.String()), nil
	}

	total := 0
	for _, row := range rows {
		name := strings.TrimSpace(row.Employee)
		if name == "" {
			name = "(unknown)"
		}
		builder.WriteString(fmt.Sprintf("• %s: %s in %d %s\n",
			html.EscapeString(name), formatMinutes(row.Minutes), row.Entries, plural(row.Entries, "entry", "entries")))
		total += row.Minutes
	}
	builder.WriteString(fmt.Sprintf("\n⏱ <b>Total</b>: %s\n", formatMinutes(total)))

	return strings.TrimSpace(builder.String()), nil
}

func formatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %02dm", h, m)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
