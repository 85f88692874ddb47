package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

type requestRepo struct{ *Store }

const requestCols = `
	id, target_user_id, identity_id, requesting_user_id, app_id,
	requested_scopes, context_description, status, created_at, processed_at`

func scanRequest(row pgx.Row) (*repository.ConsentRequest, error) {
	var cr repository.ConsentRequest
	err := row.Scan(&cr.ID, &cr.TargetUserID, &cr.IdentityID, &cr.RequestingUserID,
		&cr.AppID, &cr.RequestedScopes, &cr.ContextDescription, &cr.Status,
		&cr.CreatedAt, &cr.ProcessedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &cr, nil
}

// Create inserta un request PENDING. El índice parcial único sobre
// (identity_id, requesting_user_id, app_id) WHERE status = 'PENDING' es el
// backstop del chequeo del servicio; una carrera termina en ErrConflict.
func (r *requestRepo) Create(ctx context.Context, in repository.ConsentRequestInput) (*repository.ConsentRequest, error) {
	const q = `
		INSERT INTO consent_requests (
			id, target_user_id, identity_id, requesting_user_id, app_id,
			requested_scopes, context_description, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,'PENDING',NOW())
		RETURNING ` + requestCols

	row := r.q.QueryRow(ctx, q,
		uuid.NewString(), in.TargetUserID, in.IdentityID, in.RequestingUserID,
		in.AppID, in.RequestedScopes, in.ContextDescription,
	)
	return scanRequest(row)
}

func (r *requestRepo) Get(ctx context.Context, requestID string) (*repository.ConsentRequest, error) {
	const q = `SELECT ` + requestCols + ` FROM consent_requests WHERE id = $1`
	return scanRequest(r.q.QueryRow(ctx, q, requestID))
}

func (r *requestRepo) FindPending(ctx context.Context, identityID, requestingUserID string, appID *string) (*repository.ConsentRequest, error) {
	const q = `
		SELECT ` + requestCols + `
		FROM consent_requests
		WHERE identity_id = $1 AND requesting_user_id = $2
		  AND app_id IS NOT DISTINCT FROM $3
		  AND status = 'PENDING'`

	return scanRequest(r.q.QueryRow(ctx, q, identityID, requestingUserID, appID))
}

func (r *requestRepo) ListIncoming(ctx context.Context, targetUserID string) ([]repository.ConsentRequest, error) {
	const q = `SELECT ` + requestCols + ` FROM consent_requests WHERE target_user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, targetUserID)
}

func (r *requestRepo) ListOutgoing(ctx context.Context, requestingUserID string) ([]repository.ConsentRequest, error) {
	const q = `SELECT ` + requestCols + ` FROM consent_requests WHERE requesting_user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, requestingUserID)
}

func (r *requestRepo) list(ctx context.Context, q, arg string) ([]repository.ConsentRequest, error) {
	rows, err := r.q.Query(ctx, q, arg)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []repository.ConsentRequest
	for rows.Next() {
		cr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cr)
	}
	return out, rows.Err()
}

// MarkDecided es un update condicional sobre status = 'PENDING'. Dos approve
// concurrentes serializan acá: uno afecta la fila, el otro ve cero filas y
// recibe ErrAlreadyDecided.
func (r *requestRepo) MarkDecided(ctx context.Context, requestID string, status repository.RequestStatus) error {
	const q = `
		UPDATE consent_requests
		SET status = $2, processed_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`

	tag, err := r.q.Exec(ctx, q, requestID, status)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrAlreadyDecided
	}
	return nil
}
