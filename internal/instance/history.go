package instance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// StateHistoryEntry is one recorded unit state change.
type StateHistoryEntry struct {
	ID         int64             `json:"id"`
	InstanceID string            `json:"instance_id"`
	State      string            `json:"state"`
	Previous   string            `json:"previous"`
	Signal     bool              `json:"signal"`
	Source     automation.Source `json:"source"`
	PortID     string            `json:"port_id"`
	CreatedAt  time.Time         `json:"created_at"`
}

// StateHistoryRepository stores and retrieves unit state changes.
//
// Implementations must be thread-safe and use UTC timestamps.
type StateHistoryRepository interface {
	// Record stores one event.
	Record(ctx context.Context, ev automation.Event) error

	// GetHistory returns up to limit entries for an instance, newest first.
	// limit <= 0 means the default (50); values above 200 are clamped.
	GetHistory(ctx context.Context, instanceID string, limit int) ([]StateHistoryEntry, error)

	// DeleteForInstance removes all entries of an instance.
	DeleteForInstance(ctx context.Context, instanceID string) error

	// Prune deletes entries older than olderThan and returns the count.
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SQLiteStateHistoryRepository implements StateHistoryRepository on the
// state_history table.
type SQLiteStateHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteStateHistoryRepository creates a repository on an open,
// migrated database.
func NewSQLiteStateHistoryRepository(db *sql.DB) *SQLiteStateHistoryRepository {
	return &SQLiteStateHistoryRepository{db: db}
}

// Record inserts ev. A zero timestamp is replaced with the current time.
func (r *SQLiteStateHistoryRepository) Record(ctx context.Context, ev automation.Event) error {
	if ev.InstanceID == "" {
		return fmt.Errorf("%w: instance id is required", ErrInvalidInstance)
	}
	if ev.State == "" {
		return fmt.Errorf("%w: state is required", ErrInvalidInstance)
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	source := ev.Source
	if source == "" {
		source = automation.SourceHardware
	}

	signal := 0
	if ev.Signal {
		signal = 1
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO state_history (instance_id, state, previous, signal, source, port_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.InstanceID, ev.State, ev.Previous, signal, string(source), ev.PortID,
		ts.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting state history: %w", err)
	}
	return nil
}

// GetHistory returns recent entries for an instance, newest first.
func (r *SQLiteStateHistoryRepository) GetHistory(ctx context.Context, instanceID string, limit int) ([]StateHistoryEntry, error) {
	if instanceID == "" {
		return nil, fmt.Errorf("%w: instance id is required", ErrInvalidInstance)
	}
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, instance_id, state, previous, signal, source, port_id, created_at
		 FROM state_history
		 WHERE instance_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		instanceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying state history: %w", err)
	}
	defer rows.Close()

	entries := make([]StateHistoryEntry, 0, limit)
	for rows.Next() {
		var (
			e         StateHistoryEntry
			signal    int
			source    string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.InstanceID, &e.State, &e.Previous, &signal, &source, &e.PortID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning state history: %w", err)
		}
		e.Signal = signal != 0
		e.Source = automation.Source(source)
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating state history: %w", err)
	}
	return entries, nil
}

// DeleteForInstance removes every entry of instanceID.
func (r *SQLiteStateHistoryRepository) DeleteForInstance(ctx context.Context, instanceID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM state_history WHERE instance_id = ?", instanceID); err != nil {
		return fmt.Errorf("deleting state history: %w", err)
	}
	return nil
}

// Prune deletes entries older than now-olderThan.
func (r *SQLiteStateHistoryRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}
	cutoff := time.Now().UTC().Add(-olderThan).Format(timeLayout)

	result, err := r.db.ExecContext(ctx, "DELETE FROM state_history WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning state history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	default:
		return limit
	}
}

// HistoryRecorder returns an event bus handler that records every event.
func HistoryRecorder(repo StateHistoryRepository) func(context.Context, automation.Event) error {
	return func(ctx context.Context, ev automation.Event) error {
		return repo.Record(ctx, ev)
	}
}

// RunPruner prunes entries older than retention once a day until ctx is
// cancelled. A non-positive retention disables pruning.
func RunPruner(ctx context.Context, repo StateHistoryRepository, retention time.Duration, logger Logger) {
	if retention <= 0 {
		return
	}
	if logger == nil {
		logger = noopLogger{}
	}

	prune := func() {
		n, err := repo.Prune(ctx, retention)
		if err != nil {
			logger.Warn("state history prune failed", "error", err)
			return
		}
		if n > 0 {
			logger.Info("state history pruned", "deleted", n)
		}
	}

	prune()
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
