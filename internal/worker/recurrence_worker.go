package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DemandaResetter сбрасывает завершенные повторяющиеся деманды.
type DemandaResetter interface {
	ResetRecurring(ctx context.Context, now time.Time) (int, error)
}

// RecurrenceWorker по расписанию (по умолчанию полночь) возвращает
// в pending повторяющиеся деманды на их дни недели.
type RecurrenceWorker struct {
	service  DemandaResetter
	schedule string
	cron     *cron.Cron
}

func NewRecurrenceWorker(service DemandaResetter, schedule string) *RecurrenceWorker {
	return &RecurrenceWorker{
		service:  service,
		schedule: schedule,
		cron:     cron.New(),
	}
}

func (w *RecurrenceWorker) Start() error {
	_, err := w.cron.AddFunc(w.schedule, w.runOnce)
	if err != nil {
		return fmt.Errorf("ошибка расписания %q: %w", w.schedule, err)
	}
	w.cron.Start()
	return nil
}

func (w *RecurrenceWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *RecurrenceWorker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := w.service.ResetRecurring(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Ошибка сброса повторяющихся демандов: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Сброшено повторяющихся демандов: %d", n)
	}
}
