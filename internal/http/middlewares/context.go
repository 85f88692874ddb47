package middlewares

import (
	"context"

	"github.com/dropDatabas3/personavault/internal/auth"
	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeySession
	ctxKeyApp
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

// GetRequestID retorna el request ID del contexto, o "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

func setSession(ctx context.Context, claims *auth.SessionClaims) context.Context {
	return context.WithValue(ctx, ctxKeySession, claims)
}

// GetSession retorna los claims de sesión, o nil si el request es anónimo.
func GetSession(ctx context.Context) *auth.SessionClaims {
	v, _ := ctx.Value(ctxKeySession).(*auth.SessionClaims)
	return v
}

// GetUserID retorna el user ID de la sesión, o "" si es anónimo.
func GetUserID(ctx context.Context) string {
	if c := GetSession(ctx); c != nil {
		return c.Subject
	}
	return ""
}

func setApp(ctx context.Context, app *repository.App) context.Context {
	return context.WithValue(ctx, ctxKeyApp, app)
}

// GetApp retorna la app autenticada por API key, o nil.
func GetApp(ctx context.Context) *repository.App {
	v, _ := ctx.Value(ctxKeyApp).(*repository.App)
	return v
}
