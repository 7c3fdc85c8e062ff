package repository

import (
	"context"

	"github.com/St1cky1/demanda-service/internal/entity"
	"github.com/jmoiron/sqlx"
)

type DemandaAuditRepository struct {
	db *sqlx.DB
}

func NewDemandaAuditRepository(db *sqlx.DB) *DemandaAuditRepository {
	return &DemandaAuditRepository{
		db: db,
	}
}

type auditRow struct {
	ID        int               `db:"id"`
	EventID   string            `db:"event_id"`
	Action    entity.ActionType `db:"action"`
	EntityID  int               `db:"entity_id"`
	OldValues *string           `db:"old_values"`
	NewValues *string           `db:"new_values"`
	ChangedAt string            `db:"changed_at"`
}

func (r *DemandaAuditRepository) Create(ctx context.Context, audit *entity.DemandaAudit) error {
	query := `
	INSERT INTO demanda_audit (event_id, action, entity_id, old_values, new_values, changed_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		audit.EventID,
		string(audit.Action),
		audit.EntityID,
		audit.OldValues,
		audit.NewValues,
		audit.ChangedAt,
	)
	return err
}

func (r *DemandaAuditRepository) ListByEntityID(ctx context.Context, entityID int) ([]entity.DemandaAudit, error) {
	query := `
	SELECT id, event_id, action, entity_id, old_values, new_values, changed_at
	FROM demanda_audit
	WHERE entity_id = ?
	ORDER BY id
	`

	var rows []auditRow
	if err := r.db.SelectContext(ctx, &rows, query, entityID); err != nil {
		return nil, err
	}

	audits := make([]entity.DemandaAudit, 0, len(rows))
	for _, row := range rows {
		audits = append(audits, entity.DemandaAudit{
			ID:        row.ID,
			EventID:   row.EventID,
			Action:    row.Action,
			EntityID:  row.EntityID,
			OldValues: row.OldValues,
			NewValues: row.NewValues,
			ChangedAt: row.ChangedAt,
		})
	}
	return audits, nil
}
