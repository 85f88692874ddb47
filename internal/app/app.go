// Package app construye y cablea todos los componentes de la aplicación.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/personavault/internal/audit"
	"github.com/dropDatabas3/personavault/internal/auth"
	"github.com/dropDatabas3/personavault/internal/cache"
	"github.com/dropDatabas3/personavault/internal/config"
	"github.com/dropDatabas3/personavault/internal/consent"
	"github.com/dropDatabas3/personavault/internal/http/handlers"
	"github.com/dropDatabas3/personavault/internal/http/router"
	"github.com/dropDatabas3/personavault/internal/metrics"
	"github.com/dropDatabas3/personavault/internal/notify"
	"github.com/dropDatabas3/personavault/internal/observability/logger"
	"github.com/dropDatabas3/personavault/internal/policy"
	"github.com/dropDatabas3/personavault/internal/rate"
	"github.com/dropDatabas3/personavault/internal/security/apikey"
	"github.com/dropDatabas3/personavault/internal/store/pg"
)

// App agrupa los componentes vivos del proceso.
type App struct {
	Cfg     *config.Config
	Log     *zap.Logger
	Store   *pg.Store
	Cache   cache.Client
	Handler http.Handler
}

// New construye la aplicación completa desde la configuración.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "personavault",
	})
	log := logger.L()

	if cfg.JWT.Secret == "" {
		return nil, errors.New("app: jwt secret is required (PERSONAVAULT_JWT_SECRET)")
	}
	if cfg.Storage.DSN == "" {
		return nil, errors.New("app: storage dsn is required (PERSONAVAULT_DSN)")
	}

	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	}, log)
	if err != nil {
		return nil, err
	}

	memTTL, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
	cacheClient, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: memTTL,
	})
	if err != nil {
		return nil, err
	}

	if err := metrics.Register(nil); err != nil {
		return nil, err
	}

	sessions := auth.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret), cfg.AccessTTL())
	recorder := audit.NewRecorder(store.Audit(), log.Named("audit"))

	var notifier consent.Notifier = notify.Nop{}
	smtpCfg := notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
	if smtpCfg.Enabled() {
		notifier = notify.NewMailer(smtpCfg, store.Users(), log.Named("notify"))
	}

	consentSvc := consent.NewService(store, recorder, notifier, log.Named("consent"))
	resolver := policy.NewResolver(store.Consents(), recorder)

	// El data-plane autentica por API key en cada request; el registro de la
	// app se sirve desde cache con TTL corto y se invalida en cada escritura.
	appRecords := cache.NewApps(store.Apps(), cacheClient, 30*time.Second)
	appAuth := apikey.NewAuthenticator(appRecords)

	handler := router.New(router.Deps{
		Sessions: sessions,
		AppAuth:  appAuth,

		Auth:            handlers.NewAuthHandler(store.Users(), sessions),
		Identities:      handlers.NewIdentityHandler(store, resolver),
		Apps:            handlers.NewAppHandler(store, appRecords),
		ConsentRequests: handlers.NewConsentRequestHandler(consentSvc, store),
		Consents:        handlers.NewConsentHandler(consentSvc, store),
		AppData:         handlers.NewAppDataHandler(store, resolver),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": store,
			"cache":    cacheClient,
		}),

		LoginLimiter:         buildLimiter(cfg, cacheClient, cfg.Rate.Login.Limit, cfg.Rate.Login.Window, "rl:login:"),
		ConsentCreateLimiter: buildLimiter(cfg, cacheClient, cfg.Rate.ConsentRequest.Limit, cfg.Rate.ConsentRequest.Window, "rl:consreq:"),
		CORSAllowedOrigins:   cfg.Server.CORSAllowedOrigins,
	})

	return &App{
		Cfg:     cfg,
		Log:     log,
		Store:   store,
		Cache:   cacheClient,
		Handler: handler,
	}, nil
}

// buildLimiter elige backend según el cache configurado: Redis si hay (sirve
// multi-instancia), token bucket en memoria si no.
func buildLimiter(cfg *config.Config, c cache.Client, max int, window string, prefix string) rate.Limiter {
	if !cfg.Rate.Enabled {
		return nil
	}
	w, err := time.ParseDuration(window)
	if err != nil || w <= 0 {
		w = time.Minute
	}

	if rc, ok := c.(interface{ Raw() *redis.Client }); ok {
		return rate.NewRedisLimiter(rc.Raw(), prefix, max, w)
	}
	return rate.NewMemoryLimiter(max, w)
}

// Run levanta el servidor HTTP y bloquea hasta que el contexto se cancele o
// el servidor falle. El shutdown drena conexiones con un timeout de 10s.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Cfg.Server.Addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.Log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	a.Store.Close()
	_ = a.Cache.Close()
	_ = logger.Sync()
	return err
}
