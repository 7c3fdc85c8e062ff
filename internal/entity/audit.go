package entity

import (
	"time"
)

type ActionType string

const (
	ActionCreate ActionType = "Create"
	ActionUpdate ActionType = "Update"
	ActionDelete ActionType = "Delete"
)

type DemandaAudit struct {
	ID        int        `json:"id"`
	EventID   string     `json:"event_id"`
	Action    ActionType `json:"action"`
	EntityID  int        `json:"entity_id"`
	OldValues *string    `json:"old_values"`
	NewValues *string    `json:"new_values"`
	ChangedAt string     `json:"changed_at"`
}

// AuditMessage - событие изменения деманды, публикуемое в RabbitMQ.
type AuditMessage struct {
	EventID   string     `json:"event_id"`
	Action    ActionType `json:"action"`
	EntityID  int        `json:"entity_id"`
	OldValues *Demanda   `json:"old_values"`
	NewValues *Demanda   `json:"new_values"`
	Timestamp time.Time  `json:"timestamp"`
}
