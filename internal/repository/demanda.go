package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"

	"github.com/St1cky1/demanda-service/internal/entity"
	"github.com/jmoiron/sqlx"
)

const demandaColumns = `id, employee_id, employee_name, employee_email, category, priority,
	complexity, description, location, tag, created_at, due_date, status,
	is_recurring, week_days, assignees, comments, manager_comment, completed_at`

type DemandaRepository struct {
	db *sqlx.DB
}

func NewDemandaRepository(db *sqlx.DB) *DemandaRepository {
	return &DemandaRepository{
		db: db,
	}
}

// demandaRow - строка таблицы demandas как она лежит в БД:
// списки сериализованы в JSON-текст, пустые - NULL.
type demandaRow struct {
	ID             int            `db:"id"`
	EmployeeID     int            `db:"employee_id"`
	EmployeeName   string         `db:"employee_name"`
	EmployeeEmail  string         `db:"employee_email"`
	Category       string         `db:"category"`
	Priority       string         `db:"priority"`
	Complexity     string         `db:"complexity"`
	Description    string         `db:"description"`
	Location       string         `db:"location"`
	Tag            string         `db:"tag"`
	CreatedAt      string         `db:"created_at"`
	DueDate        string         `db:"due_date"`
	Status         string         `db:"status"`
	IsRecurring    bool           `db:"is_recurring"`
	WeekDays       sql.NullString `db:"week_days"`
	Assignees      sql.NullString `db:"assignees"`
	Comments       string         `db:"comments"`
	ManagerComment string         `db:"manager_comment"`
	CompletedAt    sql.NullString `db:"completed_at"`
}

func (r demandaRow) toEntity() entity.Demanda {
	d := entity.Demanda{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		EmployeeName:   r.EmployeeName,
		EmployeeEmail:  r.EmployeeEmail,
		Category:       r.Category,
		Priority:       r.Priority,
		Complexity:     r.Complexity,
		Description:    r.Description,
		Location:       r.Location,
		Tag:            r.Tag,
		CreatedAt:      r.CreatedAt,
		DueDate:        r.DueDate,
		Status:         entity.DemandaStatus(r.Status),
		IsRecurring:    r.IsRecurring,
		WeekDays:       decodeWeekDays(r.ID, r.WeekDays),
		Assignees:      decodeAssignees(r.ID, r.Assignees),
		Comments:       r.Comments,
		ManagerComment: r.ManagerComment,
	}
	if r.CompletedAt.Valid {
		completedAt := r.CompletedAt.String
		d.CompletedAt = &completedAt
	}
	return d
}

// decodeAssignees разбирает JSON-текст колонки assignees. Битый JSON не
// считается ошибкой запроса: логируем и возвращаем пустой список.
func decodeAssignees(id int, raw sql.NullString) []entity.Assignee {
	out := []entity.Assignee{}
	if !raw.Valid || raw.String == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		log.Printf("⚠️  Битый JSON в assignees у деманды id=%d: %v", id, err)
		return []entity.Assignee{}
	}
	if out == nil {
		return []entity.Assignee{}
	}
	return out
}

func decodeWeekDays(id int, raw sql.NullString) []string {
	out := []string{}
	if !raw.Valid || raw.String == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		log.Printf("⚠️  Битый JSON в week_days у деманды id=%d: %v", id, err)
		return []string{}
	}
	if out == nil {
		return []string{}
	}
	return out
}

// encodeList сериализует список в JSON-текст; пустой список хранится как NULL.
func encodeList(v any, length int) (sql.NullString, error) {
	if length == 0 {
		return sql.NullString{}, nil
	}
	body, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(body), Valid: true}, nil
}

func nullableString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func (r *DemandaRepository) Create(ctx context.Context, d *entity.Demanda) (*entity.Demanda, error) {
	weekDays, err := encodeList(d.WeekDays, len(d.WeekDays))
	if err != nil {
		return nil, err
	}
	assignees, err := encodeList(d.Assignees, len(d.Assignees))
	if err != nil {
		return nil, err
	}

	query := `
	INSERT INTO demandas (employee_id, employee_name, employee_email, category, priority,
		complexity, description, location, tag, created_at, due_date, status,
		is_recurring, week_days, assignees, comments, manager_comment, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query,
		d.EmployeeID,
		d.EmployeeName,
		d.EmployeeEmail,
		d.Category,
		d.Priority,
		d.Complexity,
		d.Description,
		d.Location,
		d.Tag,
		d.CreatedAt,
		d.DueDate,
		string(d.Status),
		d.IsRecurring,
		weekDays,
		assignees,
		d.Comments,
		d.ManagerComment,
		nullableString(d.CompletedAt),
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	created := *d
	created.ID = int(id)
	if created.WeekDays == nil {
		created.WeekDays = []string{}
	}
	if created.Assignees == nil {
		created.Assignees = []entity.Assignee{}
	}
	return &created, nil
}

func (r *DemandaRepository) GetByID(ctx context.Context, id int) (*entity.Demanda, error) {
	query := `SELECT ` + demandaColumns + ` FROM demandas WHERE id = ?`

	var row demandaRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	d := row.toEntity()
	return &d, nil
}

// Update - полная перезапись строки, возвращает число затронутых строк.
func (r *DemandaRepository) Update(ctx context.Context, id int, d *entity.Demanda) (int64, error) {
	weekDays, err := encodeList(d.WeekDays, len(d.WeekDays))
	if err != nil {
		return 0, err
	}
	assignees, err := encodeList(d.Assignees, len(d.Assignees))
	if err != nil {
		return 0, err
	}

	query := `
	UPDATE demandas
	SET employee_id = ?, employee_name = ?, employee_email = ?, category = ?, priority = ?,
		complexity = ?, description = ?, location = ?, tag = ?, created_at = ?, due_date = ?,
		status = ?, is_recurring = ?, week_days = ?, assignees = ?, comments = ?,
		manager_comment = ?, completed_at = ?
	WHERE id = ?
	`

	res, err := r.db.ExecContext(ctx, query,
		d.EmployeeID,
		d.EmployeeName,
		d.EmployeeEmail,
		d.Category,
		d.Priority,
		d.Complexity,
		d.Description,
		d.Location,
		d.Tag,
		d.CreatedAt,
		d.DueDate,
		string(d.Status),
		d.IsRecurring,
		weekDays,
		assignees,
		d.Comments,
		d.ManagerComment,
		nullableString(d.CompletedAt),
		id,
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *DemandaRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM demandas WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *DemandaRepository) List(ctx context.Context) ([]entity.Demanda, error) {
	query := `SELECT ` + demandaColumns + ` FROM demandas ORDER BY datetime(created_at) DESC, id DESC`
	return r.selectDemandas(ctx, query)
}

// ListByEmployee возвращает деманды, где сотрудник - владелец либо входит
// в список assignees. Принадлежность проверяется по раскодированному списку,
// а не по подстроке в сыром JSON.
func (r *DemandaRepository) ListByEmployee(ctx context.Context, employeeID int) ([]entity.Demanda, error) {
	query := `SELECT ` + demandaColumns + ` FROM demandas
	WHERE employee_id = ? OR assignees IS NOT NULL
	ORDER BY datetime(created_at) DESC, id DESC`

	var rows []demandaRow
	if err := r.db.SelectContext(ctx, &rows, query, employeeID); err != nil {
		return nil, err
	}

	demandas := []entity.Demanda{}
	for _, row := range rows {
		d := row.toEntity()
		if d.EmployeeID == employeeID || containsAssignee(d.Assignees, employeeID) {
			demandas = append(demandas, d)
		}
	}
	return demandas, nil
}

func containsAssignee(assignees []entity.Assignee, id int) bool {
	for _, a := range assignees {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (r *DemandaRepository) ListByStatus(ctx context.Context, status string) ([]entity.Demanda, error) {
	query := `SELECT ` + demandaColumns + ` FROM demandas WHERE status = ? ORDER BY datetime(created_at) DESC, id DESC`
	return r.selectDemandas(ctx, query, status)
}

func (r *DemandaRepository) ListRecurring(ctx context.Context) ([]entity.Demanda, error) {
	query := `SELECT ` + demandaColumns + ` FROM demandas WHERE is_recurring = 1 ORDER BY datetime(created_at) DESC, id DESC`
	return r.selectDemandas(ctx, query)
}

func (r *DemandaRepository) selectDemandas(ctx context.Context, query string, args ...any) ([]entity.Demanda, error) {
	var rows []demandaRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	demandas := make([]entity.Demanda, 0, len(rows))
	for _, row := range rows {
		demandas = append(demandas, row.toEntity())
	}
	return demandas, nil
}

// Stats - количество демандов по каждому статусу.
func (r *DemandaRepository) Stats(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, COUNT(*) AS count FROM demandas GROUP BY status`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func (r *DemandaRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM demandas`); err != nil {
		return 0, err
	}
	return count, nil
}
