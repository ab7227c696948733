package bot

import (
	"context"
	"fmt"

	"daily-report/internal/service"
)

// SendDigest builds the summary for date and hands it to n.
func SendDigest(ctx context.Context, digests *service.DigestService, n Notifier, date string) error {
	text, err := digests.DailySummary(ctx, date)
	if err != nil {
		return fmt.Errorf("build digest for %s: %w", date, err)
	}
	if err := n.Notify(ctx, text); err != nil {
		return fmt.Errorf("deliver digest for %s: %w", date, err)
	}
	return nil
}
