package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sweeney/truck-scale/internal/logic"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestRecordAndRecent(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	events := []logic.Event{
		{Timestamp: start, Type: logic.EventLoadCompleted, Weight: 1000, Totals: logic.Totals{LoadCount: 1, TotalWeight: 1000}},
		{Timestamp: start.Add(time.Minute), Type: logic.EventCalibrated, Weight: 12.5, Factor: 700},
		{Timestamp: start.Add(2 * time.Minute), Type: logic.EventLoadCompleted, Weight: 1500, Totals: logic.Totals{LoadCount: 2, TotalWeight: 2500}},
	}
	for _, e := range events {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("record %s: %v", e.Type, err)
		}
	}

	got, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Event != "LOAD_COMPLETED" || got[0].LoadCount != 2 || got[0].TotalKg != 2500 {
		t.Errorf("newest entry: %+v", got[0])
	}
	if !got[0].OccurredAt.Equal(start.Add(2 * time.Minute)) {
		t.Errorf("occurred_at: got %v", got[0].OccurredAt)
	}
	if got[1].Event != "CALIBRATED" || got[1].Factor != 700 {
		t.Errorf("second entry: %+v", got[1])
	}
}

func TestLoadsSince(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	j.Record(ctx, logic.Event{Timestamp: start, Type: logic.EventLoadCompleted, Weight: 100})
	j.Record(ctx, logic.Event{Timestamp: start.Add(time.Hour), Type: logic.EventLoadCompleted, Weight: 200})
	j.Record(ctx, logic.Event{Timestamp: start.Add(time.Hour), Type: logic.EventTare})
	j.Record(ctx, logic.Event{Timestamp: start.Add(2 * time.Hour), Type: logic.EventLoadCompleted, Weight: 300})

	count, total, err := j.LoadsSince(ctx, start.Add(30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 || total != 500 {
		t.Errorf("got %d loads %v kg, want 2 loads 500 kg", count, total)
	}

	count, total, err = j.LoadsSince(ctx, start.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 || total != 0 {
		t.Errorf("expected nothing, got %d %v", count, total)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	j.Record(context.Background(), logic.Event{Timestamp: time.Now(), Type: logic.EventReset})
	j.Close()

	j, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	got, err := j.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Event != "RESET" {
		t.Errorf("unexpected entries after reopen: %+v", got)
	}
}
