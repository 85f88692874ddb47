package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

type appRepo struct{ *Store }

const appCols = `
	id, owner_id, name, description, website_url, logo_url, privacy_policy_url,
	terms_url, redirect_uris, api_key_hash, is_enabled, is_system_app,
	is_admin_approved, created_at, updated_at`

func scanApp(row pgx.Row) (*repository.App, error) {
	var a repository.App
	err := row.Scan(
		&a.ID, &a.OwnerID, &a.Name, &a.Description, &a.WebsiteURL, &a.LogoURL,
		&a.PrivacyPolicyURL, &a.TermsURL, &a.RedirectURIs, &a.APIKeyHash,
		&a.IsEnabled, &a.IsSystemApp, &a.IsAdminApproved, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *appRepo) Create(ctx context.Context, ownerID string, in repository.AppInput) (*repository.App, error) {
	const q = `
		INSERT INTO apps (
			id, owner_id, name, description, website_url, logo_url,
			privacy_policy_url, terms_url, redirect_uris,
			is_enabled, is_system_app, is_admin_approved, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,TRUE,FALSE,FALSE,NOW(),NOW())
		RETURNING ` + appCols

	row := r.q.QueryRow(ctx, q,
		uuid.NewString(), ownerID, in.Name, in.Description, in.WebsiteURL,
		in.LogoURL, in.PrivacyPolicyURL, in.TermsURL, in.RedirectURIs,
	)
	return scanApp(row)
}

func (r *appRepo) Get(ctx context.Context, appID string) (*repository.App, error) {
	const q = `SELECT ` + appCols + ` FROM apps WHERE id = $1`
	return scanApp(r.q.QueryRow(ctx, q, appID))
}

func (r *appRepo) ListByOwner(ctx context.Context, ownerID string) ([]repository.App, error) {
	const q = `SELECT ` + appCols + ` FROM apps WHERE owner_id = $1 ORDER BY created_at`

	rows, err := r.q.Query(ctx, q, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []repository.App
	for rows.Next() {
		a, err := scanApp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *appRepo) Update(ctx context.Context, appID string, in repository.AppInput) (*repository.App, error) {
	const q = `
		UPDATE apps SET
			name = $2, description = $3, website_url = $4, logo_url = $5,
			privacy_policy_url = $6, terms_url = $7, redirect_uris = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + appCols

	row := r.q.QueryRow(ctx, q,
		appID, in.Name, in.Description, in.WebsiteURL, in.LogoURL,
		in.PrivacyPolicyURL, in.TermsURL, in.RedirectURIs,
	)
	return scanApp(row)
}

func (r *appRepo) SetAPIKeyHash(ctx context.Context, appID, phc string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE apps SET api_key_hash = $2, updated_at = NOW() WHERE id = $1`, appID, phc)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appRepo) Delete(ctx context.Context, appID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM apps WHERE id = $1`, appID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
