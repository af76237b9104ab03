package audit

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "audit-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT,
			user_id TEXT,
			source TEXT NOT NULL,
			details TEXT,
			created_at TEXT NOT NULL
		) STRICT;
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying audit schema: %v", err)
	}

	return db
}

func TestAuditRepositoryCreateAndList(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteRepository(db)

	entry := &AuditLog{
		Action:     ActionEnroll,
		EntityType: EntityEnrollment,
		EntityID:   "crs-1:usr-2",
		UserID:     "usr-admin",
		Details:    map[string]any{"course_id": "crs-1", "student_id": "usr-2"},
	}
	if err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("creating audit log: %v", err)
	}
	if entry.ID == "" {
		t.Error("expected generated ID")
	}
	if entry.Source != "api" {
		t.Errorf("source = %q, want api default", entry.Source)
	}

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("listing audit logs: %v", err)
	}
	if result.Total != 1 || len(result.Logs) != 1 {
		t.Fatalf("total = %d, logs = %d, want 1 each", result.Total, len(result.Logs))
	}

	got := result.Logs[0]
	if got.Action != ActionEnroll || got.EntityType != EntityEnrollment {
		t.Errorf("got %s/%s, want enroll/enrollment", got.Action, got.EntityType)
	}
	if got.Details["student_id"] != "usr-2" {
		t.Errorf("details = %v, want student_id usr-2", got.Details)
	}
}

func TestAuditRepositoryListFilters(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteRepository(db)

	entries := []*AuditLog{
		{Action: ActionLogin, EntityType: EntitySession, UserID: "usr-a"},
		{Action: ActionCreate, EntityType: EntityCourse, EntityID: "crs-1", UserID: "usr-a"},
		{Action: ActionCreate, EntityType: EntityUser, EntityID: "usr-b", UserID: "usr-admin"},
	}
	for _, e := range entries {
		if err := repo.Create(context.Background(), e); err != nil {
			t.Fatalf("creating audit log: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 3},
		{"by action", Filter{Action: ActionCreate}, 2},
		{"by entity type", Filter{EntityType: EntityCourse}, 1},
		{"by entity id", Filter{EntityID: "crs-1"}, 1},
		{"by user", Filter{UserID: "usr-a"}, 2},
		{"combined", Filter{Action: ActionCreate, UserID: "usr-a"}, 1},
		{"no match", Filter{Action: ActionDelete}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("listing audit logs: %v", err)
			}
			if result.Total != tt.want {
				t.Errorf("total = %d, want %d", result.Total, tt.want)
			}
		})
	}
}

func TestAuditRepositoryListPagination(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteRepository(db)

	for i := 0; i < 5; i++ {
		if err := repo.Create(context.Background(), &AuditLog{Action: ActionGrade, EntityType: EntityGrade}); err != nil {
			t.Fatalf("creating audit log: %v", err)
		}
	}

	result, err := repo.List(context.Background(), Filter{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("listing audit logs: %v", err)
	}
	if result.Total != 5 || len(result.Logs) != 2 {
		t.Errorf("total = %d, page = %d, want 5 and 2", result.Total, len(result.Logs))
	}

	result, err = repo.List(context.Background(), Filter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("listing audit logs: %v", err)
	}
	if len(result.Logs) != 1 {
		t.Errorf("last page = %d, want 1", len(result.Logs))
	}
}
