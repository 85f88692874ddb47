// Package apikey genera y verifica las API keys de apps.
//
// La key en claro se muestra una sola vez al generarla; en la base solo
// persiste el hash argon2id (PHC, salt embebido). Regenerar pisa el hash
// anterior y la key vieja queda inutilizable para siempre.
package apikey

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/security/password"
)

// Prefix identifica visualmente las keys de PersonaVault.
const Prefix = "pvk_"

// keyBytes son los bytes de entropía de la key (>= 256 bits).
const keyBytes = 32

// ErrInvalidCredentials es el único error de autenticación que ve el caller.
// Deliberadamente genérico: no distingue "app no existe" de "key incorrecta"
// ni de "app deshabilitada", para no permitir enumeración.
var ErrInvalidCredentials = errors.New("invalid app id or key")

// Generate crea una key nueva. Retorna el plaintext (para mostrar UNA vez)
// y el PHC hash (lo único que se persiste).
func Generate() (plain, phc string, err error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain = Prefix + base64.RawURLEncoding.EncodeToString(b)
	phc, err = password.Hash(password.Default, plain)
	if err != nil {
		return "", "", err
	}
	return plain, phc, nil
}

// AppGetter es la porción del repo de apps que necesita el autenticador.
type AppGetter interface {
	Get(ctx context.Context, appID string) (*repository.App, error)
}

// Authenticator verifica credenciales de app, independiente de la sesión de usuario.
type Authenticator struct {
	apps AppGetter
}

func NewAuthenticator(apps AppGetter) *Authenticator {
	return &Authenticator{apps: apps}
}

// Authenticate busca la app y compara la key contra el hash. Falla cerrado
// con ErrInvalidCredentials para: app inexistente, sin key generada, app
// deshabilitada, o hash que no coincide.
func (a *Authenticator) Authenticate(ctx context.Context, appID, presentedKey string) (*repository.App, error) {
	if appID == "" || presentedKey == "" {
		return nil, ErrInvalidCredentials
	}
	app, err := a.apps.Get(ctx, appID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if app.APIKeyHash == nil || !app.IsEnabled {
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(presentedKey, *app.APIKeyHash) {
		return nil, ErrInvalidCredentials
	}
	return app, nil
}
