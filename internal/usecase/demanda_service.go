package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/St1cky1/demanda-service/internal/entity"
	"github.com/St1cky1/demanda-service/internal/repository"
	"github.com/google/uuid"
)

// Формат createdAt - ISO-8601 с миллисекундами, всегда UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// AuditPublisher интерфейс для публикации событий аудита в RabbitMQ
type AuditPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

type DemandaService struct {
	demandaRepo repository.IDemandaRepository
	auditRepo   repository.IDemandaAuditRepository
	publisher   AuditPublisher // nil - без брокера, аудит пишется напрямую в БД
}

func NewDemandaService(
	demandaRepo repository.IDemandaRepository,
	auditRepo repository.IDemandaAuditRepository,
	publisher AuditPublisher,
) *DemandaService {
	return &DemandaService{
		demandaRepo: demandaRepo,
		auditRepo:   auditRepo,
		publisher:   publisher,
	}
}

func (s *DemandaService) Create(ctx context.Context, req *entity.CreateDemandaRequest) (*entity.Demanda, error) {
	// 1. Проверяем обязательные поля до похода в БД
	var missing []string
	if req.EmployeeID <= 0 {
		missing = append(missing, "employeeId")
	}
	if req.EmployeeName == "" {
		missing = append(missing, "employeeName")
	}
	if req.Category == "" {
		missing = append(missing, "category")
	}
	if req.Priority == "" {
		missing = append(missing, "priority")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields: %s",
			entity.ErrInvalidDemandaData, strings.Join(missing, ", "))
	}

	// 2. Подставляем дефолты
	createdAt := req.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().UTC().Format(timestampLayout)
	}
	status := req.Status
	if status == "" {
		status = entity.StatusPending
	}

	d := &entity.Demanda{
		EmployeeID:     req.EmployeeID,
		EmployeeName:   req.EmployeeName,
		EmployeeEmail:  req.EmployeeEmail,
		Category:       req.Category,
		Priority:       req.Priority,
		Complexity:     req.Complexity,
		Description:    req.Description,
		Location:       req.Location,
		Tag:            req.Tag,
		CreatedAt:      createdAt,
		DueDate:        req.DueDate,
		Status:         status,
		IsRecurring:    req.IsRecurring,
		WeekDays:       req.WeekDays,
		Assignees:      req.Assignees,
		Comments:       req.Comments,
		ManagerComment: req.ManagerComment,
	}

	// 3. Создаем деманду
	created, err := s.demandaRepo.Create(ctx, d)
	if err != nil {
		return nil, err
	}

	// 4. Асинхронно отправляем аудит
	s.sendAudit(entity.ActionCreate, created.ID, nil, created)

	return created, nil
}

// Update - полная перезапись строки. Отсутствующий id - отдельная
// ошибка, а не тихий no-op.
func (s *DemandaService) Update(ctx context.Context, id int, req *entity.UpdateDemandaRequest) (*entity.Demanda, error) {
	if id <= 0 {
		return nil, entity.ErrInvalidDemandaID
	}

	// 1. Текущее состояние - для аудита
	old, err := s.demandaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, entity.ErrDemandaNotFound
	}

	d := &entity.Demanda{
		ID:             id,
		EmployeeID:     req.EmployeeID,
		EmployeeName:   req.EmployeeName,
		EmployeeEmail:  req.EmployeeEmail,
		Category:       req.Category,
		Priority:       req.Priority,
		Complexity:     req.Complexity,
		Description:    req.Description,
		Location:       req.Location,
		Tag:            req.Tag,
		CreatedAt:      req.CreatedAt,
		DueDate:        req.DueDate,
		Status:         req.Status,
		IsRecurring:    req.IsRecurring,
		WeekDays:       req.WeekDays,
		Assignees:      req.Assignees,
		Comments:       req.Comments,
		ManagerComment: req.ManagerComment,
		CompletedAt:    req.CompletedAt,
	}

	// 2. Перезаписываем строку
	affected, err := s.demandaRepo.Update(ctx, id, d)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, entity.ErrDemandaNotFound
	}

	if d.WeekDays == nil {
		d.WeekDays = []string{}
	}
	if d.Assignees == nil {
		d.Assignees = []entity.Assignee{}
	}

	// 3. Асинхронно отправляем аудит
	s.sendAudit(entity.ActionUpdate, id, old, d)

	return d, nil
}

// Delete идемпотентен: удаление несуществующего id - тоже успех.
func (s *DemandaService) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return entity.ErrInvalidDemandaID
	}

	old, err := s.demandaRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.demandaRepo.Delete(ctx, id); err != nil {
		return err
	}

	if old != nil {
		s.sendAudit(entity.ActionDelete, id, old, nil)
	}
	return nil
}

func (s *DemandaService) List(ctx context.Context) ([]entity.Demanda, error) {
	return s.demandaRepo.List(ctx)
}

func (s *DemandaService) ListByEmployee(ctx context.Context, employeeID int) ([]entity.Demanda, error) {
	if employeeID <= 0 {
		return nil, entity.ErrInvalidEmployeeID
	}
	return s.demandaRepo.ListByEmployee(ctx, employeeID)
}

func (s *DemandaService) ListByStatus(ctx context.Context, status string) ([]entity.Demanda, error) {
	if status == "" {
		return nil, entity.ErrMissingStatus
	}
	return s.demandaRepo.ListByStatus(ctx, status)
}

// Stats - количество демандов по статусам плюс ключ total.
func (s *DemandaService) Stats(ctx context.Context) (entity.DemandaStats, error) {
	counts, err := s.demandaRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	stats := entity.DemandaStats{}
	total := 0
	for status, count := range counts {
		stats[status] = count
		total += count
	}
	stats["total"] = total
	return stats, nil
}

func (s *DemandaService) Count(ctx context.Context) (int, error) {
	return s.demandaRepo.Count(ctx)
}

// ResetRecurring возвращает в pending завершенные повторяющиеся деманды,
// у которых week_days содержит текущий день недели. Возвращает число
// сброшенных демандов.
func (s *DemandaService) ResetRecurring(ctx context.Context, now time.Time) (int, error) {
	demandas, err := s.demandaRepo.ListRecurring(ctx)
	if err != nil {
		return 0, err
	}

	reset := 0
	for i := range demandas {
		d := demandas[i]
		if d.Status != entity.StatusDone || !matchesWeekday(d.WeekDays, now.Weekday()) {
			continue
		}

		old := d
		d.Status = entity.StatusPending
		d.CompletedAt = nil

		affected, err := s.demandaRepo.Update(ctx, d.ID, &d)
		if err != nil {
			return reset, err
		}
		if affected == 0 {
			continue // деманду удалили между выборкой и апдейтом
		}

		s.sendAudit(entity.ActionUpdate, d.ID, &old, &d)
		reset++
	}
	return reset, nil
}

// matchesWeekday понимает полные имена ("monday"), трехбуквенные ("mon")
// и числовые индексы ("1", 0 = sunday).
func matchesWeekday(days []string, weekday time.Weekday) bool {
	full := strings.ToLower(weekday.String())
	for _, day := range days {
		day = strings.ToLower(strings.TrimSpace(day))
		if day == "" {
			continue
		}
		if day == full || (len(day) >= 3 && strings.HasPrefix(full, day)) {
			return true
		}
		if n, err := strconv.Atoi(day); err == nil && n == int(weekday) {
			return true
		}
	}
	return false
}

// Вспомогательный метод для отправки аудита
func (s *DemandaService) sendAudit(action entity.ActionType, entityID int, oldValues, newValues *entity.Demanda) {
	msg := &entity.AuditMessage{
		EventID:   uuid.NewString(),
		Action:    action,
		EntityID:  entityID,
		OldValues: oldValues,
		NewValues: newValues,
		Timestamp: time.Now().UTC(),
	}

	// Асинхронная отправка: либо в RabbitMQ, либо сразу в таблицу аудита
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if s.publisher != nil {
			err := s.publisher.PublishAuditMessage(ctx, msg)
			if err == nil {
				return
			}
			log.Printf("❌ Ошибка отправки аудита в RabbitMQ, пишем напрямую: %v", err)
		}

		if err := s.auditRepo.Create(ctx, auditFromMessage(msg)); err != nil {
			log.Printf("❌ Ошибка сохранения аудита для деманды id=%d: %v", entityID, err)
		}
	}()
}

// auditFromMessage сериализует снапшоты деманды в JSON-текст для таблицы аудита.
func auditFromMessage(msg *entity.AuditMessage) *entity.DemandaAudit {
	audit := &entity.DemandaAudit{
		EventID:   msg.EventID,
		Action:    msg.Action,
		EntityID:  msg.EntityID,
		ChangedAt: msg.Timestamp.Format(timestampLayout),
	}
	if msg.OldValues != nil {
		if body, err := json.Marshal(msg.OldValues); err == nil {
			s := string(body)
			audit.OldValues = &s
		}
	}
	if msg.NewValues != nil {
		if body, err := json.Marshal(msg.NewValues); err == nil {
			s := string(body)
			audit.NewValues = &s
		}
	}
	return audit
}
