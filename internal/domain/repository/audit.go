package repository

import (
	"context"
	"time"
)

// AuditEvent es una entrada append-only del log de auditoría.
// El core solo escribe; nunca lee de vuelta para decidir.
type AuditEvent struct {
	ID         string // ULID, ordenable por tiempo
	ActorType  string // "user" | "app" | "anonymous" | "system"
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Outcome    string // "allow" | "deny" | "success" | "failure"
	Details    map[string]any
	CreatedAt  time.Time
}

// AuditRepository persiste eventos de auditoría.
type AuditRepository interface {
	// Insert agrega un evento. El caller decide qué hacer con el error
	// (el core lo trata como best-effort).
	Insert(ctx context.Context, ev AuditEvent) error
}
