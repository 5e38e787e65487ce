package audit

import (
	"context"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/database"
	_ "github.com/nerrad567/gray-logic-onoff/migrations" // registers the schema
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.DatabaseConfig{Path: database.MemoryPath, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestCreateAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	entries := []*Entry{
		{Action: ActionCreate, EntityType: EntityInstance, EntityID: "a", Subject: "alice", Role: "admin", CreatedAt: base},
		{Action: ActionCommand, EntityType: EntityInstance, EntityID: "a", Subject: "bob", Details: map[string]any{"state": "on"}, CreatedAt: base.Add(time.Minute)},
		{Action: ActionCreate, EntityType: EntityInstance, EntityID: "b", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if e.ID == "" {
			t.Error("Create() should assign an ID")
		}
	}

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all.Total != 3 || all.Limit != defaultLimit || all.Entries[0].EntityID != "b" {
		t.Errorf("List() = %+v", all)
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"by action", Filter{Action: ActionCreate}, 2},
		{"by entity", Filter{EntityType: EntityInstance, EntityID: "a"}, 2},
		{"combined", Filter{Action: ActionCommand, EntityID: "a"}, 1},
		{"no match", Filter{EntityID: "zzz"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if res.Total != tt.want || len(res.Entries) != tt.want {
				t.Errorf("total = %d, entries = %d, want %d", res.Total, len(res.Entries), tt.want)
			}
		})
	}

	cmd, err := repo.List(ctx, Filter{Action: ActionCommand})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	got := cmd.Entries[0]
	if got.Subject != "bob" || got.Role != "" || got.Details["state"] != "on" || !got.CreatedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("command entry = %+v", got)
	}
}

func TestList_Pagination(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := repo.Create(ctx, &Entry{Action: ActionUpdate, EntityType: EntityInstance}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	res, err := repo.List(ctx, Filter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 5 || len(res.Entries) != 1 {
		t.Errorf("page = total %d, entries %d", res.Total, len(res.Entries))
	}

	res, err = repo.List(ctx, Filter{Limit: 1000, Offset: -3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Limit != maxLimit || res.Offset != 0 {
		t.Errorf("clamped limit/offset = %d/%d", res.Limit, res.Offset)
	}
}

func TestCreate_RequiresActionAndEntityType(t *testing.T) {
	repo := setupRepo(t)
	if err := repo.Create(context.Background(), &Entry{Action: ActionCreate}); err == nil {
		t.Error("Create() without entity type should fail")
	}
}
