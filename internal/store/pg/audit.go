package pg

import (
	"context"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

type auditRepo struct{ *Store }

// Insert es append-only; no hay update ni delete sobre audit_log.
func (r *auditRepo) Insert(ctx context.Context, ev repository.AuditEvent) error {
	const q = `
		INSERT INTO audit_log (
			id, actor_type, actor_id, action, target_type, target_id,
			outcome, details, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := r.q.Exec(ctx, q,
		ev.ID, ev.ActorType, ev.ActorID, ev.Action, ev.TargetType, ev.TargetID,
		ev.Outcome, ev.Details, ev.CreatedAt,
	)
	return translate(err)
}
