package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

// AppSource es la fuente autoritativa de registros de app.
type AppSource interface {
	Get(ctx context.Context, id string) (*repository.App, error)
}

// Apps es un read-through cache de registros de app para el data-plane: cada
// request autenticada por API key carga la app, y el registro cambia poco.
// Las escrituras del plano de gestión invalidan la entrada, así una key
// rotada deja de servir en el acto y no al vencer el TTL.
type Apps struct {
	next   AppSource
	client Client
	ttl    time.Duration
}

const defaultAppTTL = 30 * time.Second

// NewApps construye el cache sobre next. Un ttl <= 0 cae al default corto.
func NewApps(next AppSource, client Client, ttl time.Duration) *Apps {
	if ttl <= 0 {
		ttl = defaultAppTTL
	}
	return &Apps{next: next, client: client, ttl: ttl}
}

func appKey(id string) string { return "app:" + id }

// Get retorna la app desde cache o, en miss, desde la fuente (cacheando el
// resultado). Los errores de la fuente no se cachean.
func (a *Apps) Get(ctx context.Context, id string) (*repository.App, error) {
	if raw, err := a.client.Get(ctx, appKey(id)); err == nil {
		var app repository.App
		if json.Unmarshal([]byte(raw), &app) == nil {
			return &app, nil
		}
		// Entrada corrupta: se descarta y se vuelve a la fuente.
		_ = a.client.Delete(ctx, appKey(id))
	}

	app, err := a.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if buf, err := json.Marshal(app); err == nil {
		_ = a.client.Set(ctx, appKey(id), string(buf), a.ttl)
	}
	return app, nil
}

// Invalidate descarta la entrada cacheada de una app. Best-effort: un fallo
// del backend solo alarga la ventana hasta el TTL.
func (a *Apps) Invalidate(ctx context.Context, id string) {
	_ = a.client.Delete(ctx, appKey(id))
}
