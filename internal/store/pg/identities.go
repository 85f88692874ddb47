package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

type identityRepo struct{ *Store }

// identityCols es la lista canónica de columnas; el orden tiene que coincidir
// con scanIdentity.
const identityCols = `
	id, user_id, label, category, custom_category_name, description,
	name_details, name_history, religious_names,
	gender_identity, custom_gender_description, pronouns, date_of_birth, location,
	profile_picture_url, contact_details, online_presence, website_urls,
	additional_attributes, visibility, created_at, updated_at`

func scanIdentity(row pgx.Row) (*repository.Identity, error) {
	var i repository.Identity
	err := row.Scan(
		&i.ID, &i.UserID, &i.Label, &i.Category, &i.CustomCategoryName, &i.Description,
		&i.NameDetails, &i.NameHistory, &i.ReligiousNames,
		&i.GenderIdentity, &i.CustomGenderDesc, &i.Pronouns, &i.DateOfBirth, &i.Location,
		&i.ProfilePictureURL, &i.ContactDetails, &i.OnlinePresence, &i.WebsiteURLs,
		&i.AdditionalAttributes, &i.Visibility, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &i, nil
}

func (r *identityRepo) Create(ctx context.Context, userID string, in repository.IdentityInput) (*repository.Identity, error) {
	const q = `
		INSERT INTO identities (
			id, user_id, label, category, custom_category_name, description,
			name_details, name_history, religious_names,
			gender_identity, custom_gender_description, pronouns, date_of_birth, location,
			profile_picture_url, contact_details, online_presence, website_urls,
			additional_attributes, visibility, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,NOW(),NOW())
		RETURNING ` + identityCols

	row := r.q.QueryRow(ctx, q,
		uuid.NewString(), userID, in.Label, in.Category, in.CustomCategoryName, in.Description,
		in.NameDetails, in.NameHistory, in.ReligiousNames,
		in.GenderIdentity, in.CustomGenderDesc, in.Pronouns, in.DateOfBirth, in.Location,
		in.ProfilePictureURL, in.ContactDetails, in.OnlinePresence, in.WebsiteURLs,
		in.AdditionalAttributes, in.Visibility,
	)
	return scanIdentity(row)
}

func (r *identityRepo) Get(ctx context.Context, identityID string) (*repository.Identity, error) {
	const q = `SELECT ` + identityCols + ` FROM identities WHERE id = $1`
	return scanIdentity(r.q.QueryRow(ctx, q, identityID))
}

func (r *identityRepo) ListByUser(ctx context.Context, userID string) ([]repository.Identity, error) {
	const q = `SELECT ` + identityCols + ` FROM identities WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.q.Query(ctx, q, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []repository.Identity
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

func (r *identityRepo) Update(ctx context.Context, identityID string, in repository.IdentityInput) (*repository.Identity, error) {
	const q = `
		UPDATE identities SET
			label = $2, category = $3, custom_category_name = $4, description = $5,
			name_details = $6, name_history = $7, religious_names = $8,
			gender_identity = $9, custom_gender_description = $10, pronouns = $11,
			date_of_birth = $12, location = $13, profile_picture_url = $14,
			contact_details = $15, online_presence = $16, website_urls = $17,
			additional_attributes = $18, visibility = $19, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + identityCols

	row := r.q.QueryRow(ctx, q,
		identityID, in.Label, in.Category, in.CustomCategoryName, in.Description,
		in.NameDetails, in.NameHistory, in.ReligiousNames,
		in.GenderIdentity, in.CustomGenderDesc, in.Pronouns, in.DateOfBirth, in.Location,
		in.ProfilePictureURL, in.ContactDetails, in.OnlinePresence, in.WebsiteURLs,
		in.AdditionalAttributes, in.Visibility,
	)
	return scanIdentity(row)
}

func (r *identityRepo) Delete(ctx context.Context, identityID string) error {
	// Consents y requests asociados caen por FK ON DELETE CASCADE.
	tag, err := r.q.Exec(ctx, `DELETE FROM identities WHERE id = $1`, identityID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
