package instance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/nerrad567/gray-logic-onoff/internal/configurable"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Repository persists instances.
type Repository interface {
	// GetByID returns ErrInstanceNotFound when id does not exist.
	GetByID(ctx context.Context, id string) (*configurable.Instance, error)

	// List returns every instance ordered by creation time.
	List(ctx context.Context) ([]*configurable.Instance, error)

	// Create returns ErrInstanceExists when the ID is taken.
	Create(ctx context.Context, inst *configurable.Instance) error

	// Update returns ErrInstanceNotFound when the instance does not exist.
	Update(ctx context.Context, inst *configurable.Instance) error

	// Delete returns ErrInstanceNotFound when the instance does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository on the instances table.
// Fields are stored as a JSON object.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves one instance.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*configurable.Instance, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, class, fields, created_at, updated_at FROM instances WHERE id = ?", id)
	inst, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("querying instance by id: %w", err)
	}
	return inst, nil
}

// List retrieves all instances, oldest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]*configurable.Instance, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, class, fields, created_at, updated_at FROM instances ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("querying instances: %w", err)
	}
	defer rows.Close()

	var out []*configurable.Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning instance: %w", err)
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating instances: %w", err)
	}
	return out, nil
}

// Create inserts inst, stamping CreatedAt and UpdatedAt when unset.
func (r *SQLiteRepository) Create(ctx context.Context, inst *configurable.Instance) error {
	if inst == nil || inst.ID == "" || inst.Class == "" {
		return fmt.Errorf("%w: id and class are required", ErrInvalidInstance)
	}
	fieldsJSON, err := marshalFields(inst.Fields)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = now
	}
	if inst.UpdatedAt.IsZero() {
		inst.UpdatedAt = inst.CreatedAt
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO instances (id, class, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		inst.ID, inst.Class, fieldsJSON,
		inst.CreatedAt.UTC().Format(timeLayout), inst.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if isConstraintError(err) {
			return ErrInstanceExists
		}
		return fmt.Errorf("inserting instance: %w", err)
	}
	return nil
}

// Update replaces the fields of an existing instance and bumps UpdatedAt.
// The class is immutable.
func (r *SQLiteRepository) Update(ctx context.Context, inst *configurable.Instance) error {
	if inst == nil || inst.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInstance)
	}
	fieldsJSON, err := marshalFields(inst.Fields)
	if err != nil {
		return err
	}
	inst.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		"UPDATE instances SET fields = ?, updated_at = ? WHERE id = ?",
		fieldsJSON, inst.UpdatedAt.Format(timeLayout), inst.ID,
	)
	if err != nil {
		return fmt.Errorf("updating instance: %w", err)
	}
	return requireRow(result)
}

// Delete removes an instance.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM instances WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting instance: %w", err)
	}
	return requireRow(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInstance(s scanner) (*configurable.Instance, error) {
	var (
		inst                 configurable.Instance
		fieldsJSON           string
		createdAt, updatedAt string
	)
	if err := s.Scan(&inst.ID, &inst.Class, &fieldsJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &inst.Fields); err != nil {
		return nil, fmt.Errorf("unmarshalling fields: %w", err)
	}
	if inst.Fields == nil {
		inst.Fields = configurable.Fields{}
	}
	var err error
	if inst.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if inst.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &inst, nil
}

func marshalFields(fields configurable.Fields) (string, error) {
	if fields == nil {
		fields = configurable.Fields{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshalling fields: %w", err)
	}
	return string(b), nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrInstanceNotFound
	}
	return nil
}

// parseTime accepts the stored layout and plain RFC 3339.
func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrInvalidInstance)
	}
	if t, err := time.Parse(timeLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", value, err)
	}
	return t, nil
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
