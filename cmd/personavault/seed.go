package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/security/apikey"
	"github.com/dropDatabas3/personavault/internal/security/password"
	"github.com/dropDatabas3/personavault/internal/store/pg"
)

const (
	seedEmail    = "demo@personavault.local"
	seedPassword = "demo-password"
	seedAppName  = "Demo Connector"
)

// seed crea un usuario demo, una identidad pública y una app aprobada con
// API key. Idempotente: si el usuario ya existe no hace nada.
func seed(ctx context.Context, store *pg.Store, log *zap.Logger) error {
	if _, err := store.Users().GetByEmail(ctx, seedEmail); err == nil {
		log.Info("seed already applied, skipping")
		return nil
	} else if !repository.IsNotFound(err) {
		return err
	}

	phc, err := password.Hash(password.Default, seedPassword)
	if err != nil {
		return err
	}
	user, err := store.Users().Create(ctx, seedEmail, "Demo User", phc)
	if err != nil {
		return err
	}

	if _, err := store.Identities().Create(ctx, user.ID, repository.IdentityInput{
		Label:      "Public Profile",
		Category:   repository.CategorySocial,
		Pronouns:   "they/them",
		Visibility: repository.VisibilityPublic,
	}); err != nil {
		return err
	}
	if _, err := store.Identities().Create(ctx, user.ID, repository.IdentityInput{
		Label:      "Work Persona",
		Category:   repository.CategoryProfessional,
		Visibility: repository.VisibilityAppSpecific,
	}); err != nil {
		return err
	}

	app, err := store.Apps().Create(ctx, user.ID, repository.AppInput{
		Name:        seedAppName,
		Description: "App de ejemplo para probar el flujo de consents",
		WebsiteURL:  "https://example.com",
	})
	if err != nil {
		return err
	}

	// Las apps nuevas nacen sin aprobar; para desarrollo la aprobamos directo.
	if _, err := store.Pool().Exec(ctx,
		`UPDATE apps SET is_admin_approved = TRUE, updated_at = NOW() WHERE id = $1`, app.ID); err != nil {
		return err
	}

	plain, phcKey, err := apikey.Generate()
	if err != nil {
		return err
	}
	if err := store.Apps().SetAPIKeyHash(ctx, app.ID, phcKey); err != nil {
		return err
	}

	log.Info("seed applied",
		zap.String("user_id", user.ID),
		zap.String("app_id", app.ID),
	)
	fmt.Printf("demo user: %s / %s\ndemo app:  %s\napi key:   %s\n", seedEmail, seedPassword, app.ID, plain)
	return nil
}
