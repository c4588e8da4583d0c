package wal

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/user/webstat/internal/domain"
)

func newTestWAL(t *testing.T, maxSegmentSize, maxTotalSize int64) *WALRepository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := NewWALRepository(t.TempDir(), maxSegmentSize, maxTotalSize, logger)
	if err != nil {
		t.Fatalf("create WAL: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func testEvent(addr string) domain.TrackingEvent {
	return domain.TrackingEvent{
		ID:        uuid.New(),
		SiteID:    uuid.New(),
		Type:      domain.EventPageview,
		Payload:   []byte(`{"siteId":"example.com"}`),
		IPAddress: addr,
		UserAgent: "Mozilla/5.0",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestWALRepository_WriteAndReplay(t *testing.T) {
	w := newTestWAL(t, 1024*1024, 10*1024*1024)
	ctx := context.Background()

	written := []domain.TrackingEvent{testEvent("203.0.113.1"), testEvent("203.0.113.2"), testEvent("203.0.113.3")}
	for _, e := range written {
		if err := w.Write(ctx, e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	var replayed []domain.TrackingEvent
	err := w.Replay(ctx, func(e domain.TrackingEvent) error {
		replayed = append(replayed, e)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	if len(replayed) != len(written) {
		t.Fatalf("replayed %d events, want %d", len(replayed), len(written))
	}
	for i, e := range replayed {
		if e.ID != written[i].ID || e.IPAddress != written[i].IPAddress {
			t.Errorf("event %d mismatch: got %s/%s, want %s/%s", i, e.ID, e.IPAddress, written[i].ID, written[i].IPAddress)
		}
	}
}

func TestWALRepository_TruncateClearsLog(t *testing.T) {
	w := newTestWAL(t, 1024*1024, 10*1024*1024)
	ctx := context.Background()

	if err := w.Write(ctx, testEvent("203.0.113.1")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Truncate(ctx); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	count := 0
	if err := w.Replay(ctx, func(domain.TrackingEvent) error { count++; return nil }); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty WAL after truncate, replayed %d events", count)
	}

	// The WAL must stay writable after truncation.
	if err := w.Write(ctx, testEvent("203.0.113.2")); err != nil {
		t.Fatalf("write after truncate: %v", err)
	}
}

func TestWALRepository_SegmentRotation(t *testing.T) {
	// Tiny segments so every write rotates.
	w := newTestWAL(t, 64, 10*1024*1024)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := w.Write(ctx, testEvent("203.0.113.1")); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	segments, err := w.getSortedSegments()
	if err != nil {
		t.Fatalf("list segments: %v", err)
	}
	if len(segments) < 2 {
		t.Errorf("expected rotation to produce multiple segments, got %d", len(segments))
	}

	count := 0
	if err := w.Replay(ctx, func(domain.TrackingEvent) error { count++; return nil }); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 5 {
		t.Errorf("replayed %d events across segments, want 5", count)
	}
}

func TestWALRepository_MaxDiskSize(t *testing.T) {
	w := newTestWAL(t, 1024, 200)
	ctx := context.Background()

	var err error
	for i := 0; i < 10; i++ {
		if err = w.Write(ctx, testEvent("203.0.113.1")); err != nil {
			break
		}
	}
	if err == nil {
		t.Fatal("expected write to fail once the disk budget is exhausted")
	}
}

func TestWALRepository_ReopensExistingLog(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	first, err := NewWALRepository(dir, 1024*1024, 10*1024*1024, logger)
	if err != nil {
		t.Fatalf("create WAL: %v", err)
	}
	event := testEvent("203.0.113.9")
	if err := first.Write(ctx, event); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := NewWALRepository(dir, 1024*1024, 10*1024*1024, logger)
	if err != nil {
		t.Fatalf("reopen WAL: %v", err)
	}
	defer second.Close()

	var got []domain.TrackingEvent
	if err := second.Replay(ctx, func(e domain.TrackingEvent) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(got) != 1 || got[0].ID != event.ID {
		t.Fatalf("expected the event to survive a restart, got %v", got)
	}
}
