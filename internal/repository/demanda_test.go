package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/St1cky1/demanda-service/internal/entity"
	"github.com/St1cky1/demanda-service/migrations"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// openTestDB поднимает in-memory SQLite и прогоняет встроенные миграции.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		body, err := migrations.FS.ReadFile(e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		if _, err := db.Exec(string(body)); err != nil {
			t.Fatalf("apply %s: %v", e.Name(), err)
		}
	}
	return db
}

func newDemanda(employeeID int, createdAt string, status entity.DemandaStatus) *entity.Demanda {
	return &entity.Demanda{
		EmployeeID:   employeeID,
		EmployeeName: "Maria Silva",
		Category:     "support",
		Priority:     "high",
		CreatedAt:    createdAt,
		Status:       status,
	}
}

func TestCreateAssignsIDs(t *testing.T) {
	repo := NewDemandaRepository(openTestDB(t))
	ctx := context.Background()

	first, err := repo.Create(ctx, newDemanda(1, "2024-01-01T10:00:00.000Z", entity.StatusPending))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := repo.Create(ctx, newDemanda(1, "2024-01-02T10:00:00.000Z", entity.StatusPending))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if first.ID <= 0 {
		t.Errorf("Expected positive id, got %d", first.ID)
	}
	if second.ID <= first.ID {
		t.Errorf("Expected monotonic ids, got %d then %d", first.ID, second.ID)
	}
}

func TestListOrderedByCreatedAtDesc(t *testing.T) {
	repo := NewDemandaRepository(openTestDB(t))
	ctx := context.Background()

	stamps := []string{
		"2024-01-02T10:00:00.000Z",
		"2024-01-03T10:00:00.000Z",
		"2024-01-01T10:00:00.000Z",
	}
	for _, ts := range stamps {
		if _, err := repo.Create(ctx, newDemanda(1, ts, entity.StatusPending)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	demandas, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(demandas) != 3 {
		t.Fatalf("Expected 3 demandas, got %d", len(demandas))
	}

	want := []string{
		"2024-01-03T10:00:00.000Z",
		"2024-01-02T10:00:00.000Z",
		"2024-01-01T10:00:00.000Z",
	}
	for i, ts := range want {
		if demandas[i].CreatedAt != ts {
			t.Errorf("Position %d: expected createdAt %s, got %s", i, ts, demandas[i].CreatedAt)
		}
	}
}

func TestListFieldsRoundTrip(t *testing.T) {
	repo := NewDemandaRepository(openTestDB(t))
	ctx := context.Background()

	d := newDemanda(7, "2024-01-01T10:00:00.000Z", entity.StatusPending)
	d.WeekDays = []string{"monday", "wednesday"}
	d.Assignees = []entity.Assignee{
		{ID: 10, Name: "Joao", Email: "joao@example.com"},
		{ID: 11, Name: "Ana"},
	}

	created, err := repo.Create(ctx, d)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("Expected demanda, got nil")
	}

	if len(got.WeekDays) != 2 || got.WeekDays[0] != "monday" || got.WeekDays[1] != "wednesday" {
		t.Errorf("weekDays did not round-trip: %v", got.WeekDays)
	}
	if len(got.Assignees) != 2 || got.Assignees[0].ID != 10 || got.Assignees[1].ID != 11 {
		t.Errorf("assignees did not round-trip: %v", got.Assignees)
	}
	if got.Assignees[0].Email != "joao@example.com" {
		t.Errorf("assignee email lost: %v", got.Assignees[0])
	}
}

func TestEmptyListsDecodeAsEmptySlices(t *testing.T) {
	repo := NewDemandaRepository(openTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newDemanda(1, "2024-01-01T10:00:00.000Z", entity.StatusPending))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.WeekDays == nil || len(got.WeekDays) != 0 {
		t.Errorf("Expected empty weekDays slice, got %#v", got.WeekDays)
	}
	if got.Assignees == nil || len(got.Assignees) != 0 {
		t.Errorf("Expected empty assignees slice, got %#v", got.Assignees)
	}
	if got.CompletedAt != nil {
		t.Errorf("Expected nil completedAt, got %v", *got.CompletedAt)
	}
}

func TestMalformedJSONDecodesAsEmptyList(t *testing.T) {
	db := openTestDB(t)
	repo := NewDemandaRepository(db)
	ctx := context.Background()

	// Битый JSON прямо в таблице
	_, err := db.Exec(`
	INSERT INTO demandas (employee_id, employee_name, employee_email, category, priority, created_at, status, week_days, assignees)
	VALUES (1, 'Maria Silva', '', 'support', 'high', '2024-01-01T10:00:00.000Z', 'pending', '{broken', 'not json at all')
	`)
	if err != nil {
		t.Fatalf("raw insert: %v", err)
	}

	demandas, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(demandas) != 1 {
		t.Fatalf("Expected 1 demanda, got %d", len(demandas))
	}

	if len(demandas[0].WeekDays) != 0 {
		t.Errorf("Expected empty weekDays for malformed JSON, got %v", demandas[0].WeekDays)
	}
	if len(demandas[0].Assignees) != 0 {
		t.Errorf("Expected empty assignees for malformed JSON, got %v", demandas[0].Assignees)
	}
}

func TestListByEmployeeStructuralMatch(t *testing.T) {
	repo := NewDemandaRepository(openTestDB(t))
	ctx := context.Background()

	owned, err := repo.Create(ctx, newDemanda(1, "2024-01-03T10:00:00.000Z", entity.StatusPending))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	viaAssignee := newDemanda(2, "2024-01-02T10:00:00.000Z", entity.StatusPending)
	viaAssignee.Assignees = []entity.Assignee{{ID: 1, Name: "Maria"}}
	assigned, err := repo.Create(ctx, viaAssignee)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// id=1 встречается только как подстрока в имени, совпадать не должно
	decoy := newDemanda(3, "2024-01-01T10:00:00.000Z", entity.StatusPending)
	decoy.Assignees = []entity.Assignee{{ID: 21, Name: `{"id":1}`}}
	if _, err := repo.Create(ctx, decoy); err != nil {
		t.Fatalf("create: %v", err)
	}

	demandas, err := repo.ListByEmployee(ctx, 1)
	if err != nil {
		t.Fatalf("list by employee: %v", err)
	}
	if len(demandas) != 2 {
		t.Fatalf("Expected 2 demandas, got %d", len(demandas))
	}
	if demandas[0].ID != owned.ID || demandas[1].ID != assigned.ID {
		t.Errorf("Unexpected demandas: %d, %d", demandas[0].ID, demandas[1].ID)
	}
}

func TestListByStatus(t *testing.T) {
	repo := NewDemandaRepository(openTestDB(t))
	ctx := context.Background()

	for _, status := range []entity.DemandaStatus{entity.StatusPending, entity.StatusDone, entity.StatusPending} {
		if _, err := repo.Create(ctx, newDemanda(1, "2024-01-01T10:00:00.000Z", status)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	pending, err := repo.ListByStatus(ctx, "pending")
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("Expected 2 pending demandas, got %d", len(pending))
	}
	for _, d := range pending {
		if d.Status != entity.StatusPending {
			t.Errorf("Expected pending, got %s", d.Status)
		}
	}
}

func TestStats(t *testing.T) {
	repo := NewDemandaRepository(openTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Create(ctx, newDemanda(1, "2024-01-01T10:00:00.000Z", entity.StatusPending)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := repo.Create(ctx, newDemanda(1, "2024-01-01T10:00:00.000Z", entity.StatusDone)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats["pending"] != 3 || stats["done"] != 2 {
		t.Errorf("Expected pending=3 done=2, got %v", stats)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected count 5, got %d", count)
	}
}

func TestUpdateOverwritesRow(t *testing.T) {
	repo := NewDemandaRepository(openTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newDemanda(1, "2024-01-01T10:00:00.000Z", entity.StatusPending))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	completedAt := "2024-01-05T18:00:00.000Z"
	updated := newDemanda(2, "2024-01-01T10:00:00.000Z", entity.StatusDone)
	updated.EmployeeName = "Pedro Souza"
	updated.CompletedAt = &completedAt
	updated.WeekDays = []string{"friday"}

	affected, err := repo.Update(ctx, created.ID, updated)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if affected != 1 {
		t.Fatalf("Expected 1 affected row, got %d", affected)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EmployeeID != 2 || got.EmployeeName != "Pedro Souza" || got.Status != entity.StatusDone {
		t.Errorf("Row not overwritten: %+v", got)
	}
	if got.CompletedAt == nil || *got.CompletedAt != completedAt {
		t.Errorf("completedAt not persisted: %v", got.CompletedAt)
	}
	if len(got.WeekDays) != 1 || got.WeekDays[0] != "friday" {
		t.Errorf("weekDays not overwritten: %v", got.WeekDays)
	}
}

func TestUpdateMissingIDAffectsNothing(t *testing.T) {
	repo := NewDemandaRepository(openTestDB(t))
	ctx := context.Background()

	affected, err := repo.Update(ctx, 999, newDemanda(1, "2024-01-01T10:00:00.000Z", entity.StatusPending))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if affected != 0 {
		t.Errorf("Expected 0 affected rows, got %d", affected)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	repo := NewDemandaRepository(openTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newDemanda(1, "2024-01-01T10:00:00.000Z", entity.StatusPending))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Повторное удаление - тоже успех
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Errorf("Expected idempotent delete, got %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil after delete, got %+v", got)
	}
}

func TestListRecurring(t *testing.T) {
	repo := NewDemandaRepository(openTestDB(t))
	ctx := context.Background()

	recurring := newDemanda(1, "2024-01-01T10:00:00.000Z", entity.StatusDone)
	recurring.IsRecurring = true
	recurring.WeekDays = []string{"monday"}
	if _, err := repo.Create(ctx, recurring); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, newDemanda(1, "2024-01-02T10:00:00.000Z", entity.StatusPending)); err != nil {
		t.Fatalf("create: %v", err)
	}

	demandas, err := repo.ListRecurring(ctx)
	if err != nil {
		t.Fatalf("list recurring: %v", err)
	}
	if len(demandas) != 1 {
		t.Fatalf("Expected 1 recurring demanda, got %d", len(demandas))
	}
	if !demandas[0].IsRecurring {
		t.Errorf("Expected isRecurring=true, got %+v", demandas[0])
	}
}

func TestAuditRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewDemandaAuditRepository(db)
	ctx := context.Background()

	newValues := `{"id":5,"status":"pending"}`
	err := repo.Create(ctx, &entity.DemandaAudit{
		EventID:   "5f0c6b61-0000-0000-0000-000000000001",
		Action:    entity.ActionCreate,
		EntityID:  5,
		NewValues: &newValues,
		ChangedAt: "2024-01-01T10:00:00.000Z",
	})
	if err != nil {
		t.Fatalf("create audit: %v", err)
	}

	audits, err := repo.ListByEntityID(ctx, 5)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("Expected 1 audit record, got %d", len(audits))
	}
	if audits[0].Action != entity.ActionCreate || audits[0].NewValues == nil {
		t.Errorf("Unexpected audit record: %+v", audits[0])
	}
}
