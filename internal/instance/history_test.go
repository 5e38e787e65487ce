package instance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
)

func event(id, state string, at time.Time) automation.Event {
	return automation.Event{
		InstanceID: id,
		Class:      "onoff",
		State:      state,
		Previous:   "init",
		Signal:     state == "on",
		PortID:     "relay-1",
		Source:     automation.SourceManual,
		Timestamp:  at,
	}
}

func TestStateHistory_RecordAndGet(t *testing.T) {
	repo := NewSQLiteStateHistoryRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	record := HistoryRecorder(repo)
	for i, state := range []string{"on", "off", "on"} {
		if err := record(ctx, event("inst-1", state, base.Add(time.Duration(i)*time.Millisecond))); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if err := repo.Record(ctx, event("inst-2", "off", base)); err != nil {
		t.Fatalf("Record(inst-2) error = %v", err)
	}

	entries, err := repo.GetHistory(ctx, "inst-1", 0)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	latest := entries[0]
	if latest.State != "on" || !latest.Signal || latest.Source != automation.SourceManual || latest.PortID != "relay-1" {
		t.Errorf("latest entry = %+v", latest)
	}
	if !latest.CreatedAt.Equal(base.Add(2 * time.Millisecond)) {
		t.Errorf("latest CreatedAt = %v", latest.CreatedAt)
	}
	if entries[1].State != "off" || entries[1].Signal {
		t.Errorf("second entry = %+v, want off", entries[1])
	}
}

func TestStateHistory_Validation(t *testing.T) {
	repo := NewSQLiteStateHistoryRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Record(ctx, automation.Event{State: "on"}); !errors.Is(err, ErrInvalidInstance) {
		t.Errorf("Record() without instance id error = %v", err)
	}
	if err := repo.Record(ctx, automation.Event{InstanceID: "x"}); !errors.Is(err, ErrInvalidInstance) {
		t.Errorf("Record() without state error = %v", err)
	}
	if _, err := repo.GetHistory(ctx, "", 10); !errors.Is(err, ErrInvalidInstance) {
		t.Errorf("GetHistory() without instance id error = %v", err)
	}
	if _, err := repo.Prune(ctx, 0); err == nil {
		t.Error("Prune(0) should fail")
	}
}

func TestStateHistory_DefaultsOnRecord(t *testing.T) {
	repo := NewSQLiteStateHistoryRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Record(ctx, automation.Event{InstanceID: "inst-1", State: "off"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	entries, err := repo.GetHistory(ctx, "inst-1", 1)
	if err != nil || len(entries) != 1 {
		t.Fatalf("GetHistory() = %v, %v", entries, err)
	}
	if entries[0].Source != automation.SourceHardware {
		t.Errorf("default source = %q, want hardware", entries[0].Source)
	}
	if time.Since(entries[0].CreatedAt) > time.Minute {
		t.Errorf("default timestamp = %v", entries[0].CreatedAt)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, defaultHistoryLimit},
		{-5, defaultHistoryLimit},
		{10, 10},
		{maxHistoryLimit, maxHistoryLimit},
		{maxHistoryLimit + 1, maxHistoryLimit},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			if got := clampLimit(tt.in); got != tt.want {
				t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestStateHistory_PruneAndDelete(t *testing.T) {
	repo := NewSQLiteStateHistoryRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	for _, ev := range []automation.Event{
		event("inst-1", "on", now.Add(-48*time.Hour)),
		event("inst-1", "off", now.Add(-time.Minute)),
		event("inst-2", "on", now.Add(-time.Minute)),
	} {
		if err := repo.Record(ctx, ev); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	n, err := repo.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune() deleted %d, want 1", n)
	}

	if err := repo.DeleteForInstance(ctx, "inst-1"); err != nil {
		t.Fatalf("DeleteForInstance() error = %v", err)
	}
	entries, _ := repo.GetHistory(ctx, "inst-1", 10)
	if len(entries) != 0 {
		t.Errorf("inst-1 entries = %d after delete", len(entries))
	}
	entries, _ = repo.GetHistory(ctx, "inst-2", 10)
	if len(entries) != 1 {
		t.Errorf("inst-2 entries = %d, want 1", len(entries))
	}
}

func TestRunPruner_StopsOnCancel(t *testing.T) {
	repo := NewSQLiteStateHistoryRepository(setupTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		RunPruner(ctx, repo, time.Hour, nil)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunPruner did not stop")
	}

	RunPruner(context.Background(), repo, 0, nil)
}
