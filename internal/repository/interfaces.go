package repository

import (
	"context"

	"github.com/St1cky1/demanda-service/internal/entity"
)

// IDemandaRepository - интерфейс для DemandaRepository
type IDemandaRepository interface {
	Create(ctx context.Context, d *entity.Demanda) (*entity.Demanda, error)
	GetByID(ctx context.Context, id int) (*entity.Demanda, error)
	Update(ctx context.Context, id int, d *entity.Demanda) (int64, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]entity.Demanda, error)
	ListByEmployee(ctx context.Context, employeeID int) ([]entity.Demanda, error)
	ListByStatus(ctx context.Context, status string) ([]entity.Demanda, error)
	ListRecurring(ctx context.Context) ([]entity.Demanda, error)
	Stats(ctx context.Context) (map[string]int, error)
	Count(ctx context.Context) (int, error)
}

// IDemandaAuditRepository - интерфейс для DemandaAuditRepository
type IDemandaAuditRepository interface {
	Create(ctx context.Context, audit *entity.DemandaAudit) error
	ListByEntityID(ctx context.Context, entityID int) ([]entity.DemandaAudit, error)
}
