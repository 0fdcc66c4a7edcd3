package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/summon/internal/history"
)

func TestSQLiteSink_SendAndRecent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	sink, err := New("sqlite://" + dbPath)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			t.Errorf("Failed to close sink: %v", err)
		}
	}()

	ctx := context.Background()
	base := time.Now().Add(-time.Minute)

	events := []history.Event{
		{OccurredAt: base, Query: "jsb", DisplayName: "记事本", Target: `C:\Windows\notepad.exe`, Success: true, Message: "launched: 记事本"},
		{OccurredAt: base.Add(time.Second), Query: "nope", Message: "program not found: 'nope'"},
		{OccurredAt: base.Add(2 * time.Second), Query: "vim", DisplayName: "vim", Target: "/usr/bin/vim", Success: true},
	}
	for _, e := range events {
		if err := sink.Send(ctx, e); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	recent, err := sink.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d events", len(recent))
	}
	if recent[0].Query != "vim" || recent[1].Query != "nope" {
		t.Errorf("Recent() order = [%s %s], want [vim nope]", recent[0].Query, recent[1].Query)
	}
	if recent[1].Success {
		t.Error("not-found attempt stored as success")
	}
	if d := recent[0].OccurredAt.Sub(events[2].OccurredAt); d > time.Millisecond || d < -time.Millisecond {
		t.Errorf("timestamp drifted by %v", d)
	}

	// Reopening keeps the data
	_ = sink.Close()
	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	all, err := reopened.Recent(ctx, 10)
	if err != nil || len(all) != 3 {
		t.Errorf("Recent() after reopen = %d events, %v", len(all), err)
	}
	if all[2].DisplayName != "记事本" {
		t.Errorf("oldest event = %q, want 记事本", all[2].DisplayName)
	}
}

func TestSQLiteSink_InMemory(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory sink: %v", err)
	}
	defer sink.Close()

	ctx := context.Background()
	if err := sink.Send(ctx, history.Event{Query: "calc"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	recent, err := sink.Recent(ctx, 5)
	if err != nil || len(recent) != 1 {
		t.Fatalf("Recent() = %v, %v", recent, err)
	}
	if recent[0].OccurredAt.IsZero() {
		t.Error("zero timestamp should default to now")
	}

	if got, _ := sink.Recent(ctx, 0); got != nil {
		t.Errorf("Recent(0) = %v, want nil", got)
	}
}

func TestSQLiteSink_EmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Error("New() should reject an empty DSN")
	}
}

func TestSQLiteSink_ContextCancellation(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer sink.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sink.Send(ctx, history.Event{Query: "x"}); err == nil {
		t.Error("Send() with cancelled context should fail")
	}
}
