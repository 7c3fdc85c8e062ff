package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/St1cky1/demanda-service/internal/entity"
	"github.com/St1cky1/demanda-service/internal/infrastructure/client"
	"github.com/St1cky1/demanda-service/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AuditWorker читает события аудита из RabbitMQ и складывает их
// в таблицу demanda_audit.
type AuditWorker struct {
	url       string
	auditRepo repository.IDemandaAuditRepository
}

func NewAuditWorker(url string, auditRepo repository.IDemandaAuditRepository) *AuditWorker {
	return &AuditWorker{
		url:       url,
		auditRepo: auditRepo,
	}
}

func (w *AuditWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			fmt.Println("🛑 Audit Worker остановлен")
			return
		default:
			if err := w.run(ctx); err != nil {
				log.Printf("❌ Audit Worker ошибка: %v, переподключение через 5 секунд...", err)
				select {
				case <-ctx.Done():
				case <-time.After(5 * time.Second):
				}
			}
		}
	}
}

func (w *AuditWorker) run(ctx context.Context) error {
	// Отдельное соединение для consumer'а
	conn, err := amqp.Dial(w.url)
	if err != nil {
		return fmt.Errorf("ошибка подключения: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("ошибка создания канала: %w", err)
	}
	defer channel.Close()

	// Убеждаемся, что очередь существует
	_, err = channel.QueueDeclare(
		client.AuditQueueName, // name
		true,                  // durable
		false,                 // delete when unused
		false,                 // exclusive
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fmt.Errorf("ошибка объявления очереди: %w", err)
	}

	msgs, err := channel.Consume(
		client.AuditQueueName, // queue
		"audit_worker",        // consumer tag
		false,                 // auto-ack
		false,                 // exclusive
		false,                 // no-local
		false,                 // no-wait
		nil,                   // args
	)
	if err != nil {
		return fmt.Errorf("ошибка создания consumer: %w", err)
	}

	fmt.Println("✅ Audit Worker запущен. Ожидаем события...")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("канал сообщений закрыт")
			}
			w.processMessage(ctx, msg)
		}
	}
}

func (w *AuditWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	// 1. Парсим событие
	var auditMsg entity.AuditMessage
	if err := json.Unmarshal(msg.Body, &auditMsg); err != nil {
		log.Printf("❌ Ошибка парсинга события аудита: %v", err)
		msg.Nack(false, false) // Не возвращаем в очередь
		return
	}

	// 2. Сохраняем в БД
	if err := w.auditRepo.Create(ctx, convertToAudit(&auditMsg)); err != nil {
		log.Printf("❌ Ошибка сохранения аудита: %v", err)
		msg.Nack(false, true) // Возвращаем в очередь для повторной обработки
		return
	}

	msg.Ack(false)
}

func convertToAudit(msg *entity.AuditMessage) *entity.DemandaAudit {
	audit := &entity.DemandaAudit{
		EventID:   msg.EventID,
		Action:    msg.Action,
		EntityID:  msg.EntityID,
		ChangedAt: msg.Timestamp.UTC().Format(time.RFC3339),
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
