package bot

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
)

func TestLogNotifierStripsMarkup(t *testing.T) {
	var buf bytes.Buffer
	n := LogNotifier{Logger: log.New(&buf, "", 0)}

	if err := n.Notify(context.Background(), "<b>Total</b>: 1h &lt;ok&gt;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<b>") || !strings.Contains(out, "Total: 1h &lt;ok&gt;") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestLogNotifierHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (LogNotifier{}).Notify(ctx, "x"); err == nil {
		t.Fatalf("expected context error")
	}
}

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, text string) error {
	r.messages = append(r.messages, text)
	return nil
}
