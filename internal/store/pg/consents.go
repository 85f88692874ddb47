package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

type consentRepo struct{ *Store }

const consentCols = `
	id, user_id, app_id, identity_id, granted_scopes, granted_at, revoked_at, expires_at`

func scanConsent(row pgx.Row) (*repository.Consent, error) {
	var c repository.Consent
	err := row.Scan(&c.ID, &c.UserID, &c.AppID, &c.IdentityID, &c.GrantedScopes,
		&c.GrantedAt, &c.RevokedAt, &c.ExpiresAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Upsert: la unicidad sobre (user_id, app_id, identity_id) vive en un índice
// único con COALESCE para los NULLs, por eso el ON CONFLICT nombra el índice.
// Re-otorgar refresca scopes y granted_at y limpia revoked_at; nunca duplica.
func (r *consentRepo) Upsert(ctx context.Context, userID string, appID, identityID *string, scopes []string) (*repository.Consent, error) {
	const q = `
		INSERT INTO consents (id, user_id, app_id, identity_id, granted_scopes, granted_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, COALESCE(app_id, ''), COALESCE(identity_id, ''))
		DO UPDATE SET granted_scopes = EXCLUDED.granted_scopes,
		              granted_at     = NOW(),
		              revoked_at     = NULL
		RETURNING ` + consentCols

	row := r.q.QueryRow(ctx, q, uuid.NewString(), userID, appID, identityID, scopes)
	return scanConsent(row)
}

func (r *consentRepo) Get(ctx context.Context, consentID string) (*repository.Consent, error) {
	const q = `SELECT ` + consentCols + ` FROM consents WHERE id = $1`
	return scanConsent(r.q.QueryRow(ctx, q, consentID))
}

// FindActive no cachea nada: cada chequeo de acceso relee el estado actual,
// porque un grant puede revocarse entre un request y el siguiente.
func (r *consentRepo) FindActive(ctx context.Context, ownerID, appID string, identityID *string) (*repository.Consent, error) {
	const q = `
		SELECT ` + consentCols + `
		FROM consents
		WHERE user_id = $1 AND app_id = $2
		  AND identity_id IS NOT DISTINCT FROM $3
		  AND revoked_at IS NULL
		  AND (expires_at IS NULL OR expires_at > NOW())`

	return scanConsent(r.q.QueryRow(ctx, q, ownerID, appID, identityID))
}

func (r *consentRepo) ListByUser(ctx context.Context, userID string, activeOnly bool) ([]repository.Consent, error) {
	q := `SELECT ` + consentCols + ` FROM consents WHERE user_id = $1`
	if activeOnly {
		q += ` AND revoked_at IS NULL AND (expires_at IS NULL OR expires_at > NOW())`
	}
	q += ` ORDER BY granted_at DESC`

	rows, err := r.q.Query(ctx, q, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []repository.Consent
	for rows.Next() {
		c, err := scanConsent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Revoke es soft delete: solo setea revoked_at si todavía era NULL, así un
// segundo revoke no pisa el timestamp original.
func (r *consentRepo) Revoke(ctx context.Context, consentID string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE consents SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, consentID)
	return translate(err)
}
