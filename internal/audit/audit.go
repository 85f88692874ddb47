// Package audit escribe eventos de auditoría de acciones sensibles.
// Es best-effort: un fallo al persistir nunca bloquea la operación principal.
package audit

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

// Actor types.
const (
	ActorUser      = "user"
	ActorApp       = "app"
	ActorAnonymous = "anonymous"
	ActorSystem    = "system"
)

// Outcomes.
const (
	OutcomeAllow   = "allow"
	OutcomeDeny    = "deny"
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Event es el input de un registro de auditoría. ID y timestamp los asigna el sink.
type Event struct {
	ActorType  string
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Outcome    string
	Details    map[string]any
}

// Sink recibe eventos de auditoría.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

// Recorder persiste eventos en el AuditRepository y cae a log operacional
// si el insert falla.
type Recorder struct {
	repo repository.AuditRepository
	log  *zap.Logger
}

// NewRecorder crea un Recorder. repo puede ser nil (solo log).
func NewRecorder(repo repository.AuditRepository, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{repo: repo, log: log}
}

// Record escribe el evento. Fire-and-forget: los errores se loguean y se tragan.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	full := repository.AuditEvent{
		ID:         ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		ActorType:  ev.ActorType,
		ActorID:    ev.ActorID,
		Action:     ev.Action,
		TargetType: ev.TargetType,
		TargetID:   ev.TargetID,
		Outcome:    ev.Outcome,
		Details:    ev.Details,
		CreatedAt:  time.Now().UTC(),
	}
	if r.repo == nil {
		r.logEvent(full)
		return
	}
	if err := r.repo.Insert(ctx, full); err != nil {
		r.log.Warn("audit insert failed, falling back to log",
			zap.String("action", full.Action),
			zap.Error(err),
		)
		r.logEvent(full)
	}
}

func (r *Recorder) logEvent(ev repository.AuditEvent) {
	r.log.Info("audit",
		zap.String("audit_id", ev.ID),
		zap.String("actor_type", ev.ActorType),
		zap.String("actor_id", ev.ActorID),
		zap.String("action", ev.Action),
		zap.String("target_type", ev.TargetType),
		zap.String("target_id", ev.TargetID),
		zap.String("outcome", ev.Outcome),
		zap.Any("details", ev.Details),
	)
}

// Nop es un Sink que descarta todo. Para tests.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}
