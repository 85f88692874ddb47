package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dropDatabas3/personavault/internal/app"
	"github.com/dropDatabas3/personavault/internal/config"
	"github.com/dropDatabas3/personavault/internal/observability/logger"
	"github.com/dropDatabas3/personavault/internal/security/apikey"
	"github.com/dropDatabas3/personavault/internal/store/pg"
)

func main() {
	// .env es opcional; en prod la config viene del entorno real.
	_ = godotenv.Load()

	var cfgPath string

	root := &cobra.Command{
		Use:          "personavault",
		Short:        "PersonaVault: gestión de identidades con consent explícito",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", os.Getenv("PERSONAVAULT_CONFIG"), "ruta al config YAML")

	root.AddCommand(
		serveCmd(&cfgPath),
		migrateCmd(&cfgPath),
		seedCmd(&cfgPath),
		apikeyCmd(&cfgPath),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}
}

func migrateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, store, log, err := openStore(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			defer store.Close()
			_ = cfg

			return store.Migrate(cmd.Context(), log)
		},
	}
}

// seedCmd crea datos mínimos de desarrollo: un usuario demo y una app
// aprobada, para poder probar el flujo de consents sin tocar la DB a mano.
func seedCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Crea datos de desarrollo (usuario y app demo)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, store, log, err := openStore(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx, log); err != nil {
				return err
			}
			return seed(ctx, store, log)
		},
	}
}

// apikeyCmd regenera la API key de una app desde la línea de comandos, para
// operadores. Imprime el plaintext una única vez.
func apikeyCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "apikey <app-id>",
		Short: "Regenera la API key de una app e imprime el plaintext",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, store, _, err := openStore(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer store.Close()

			appID := args[0]
			if _, err := store.Apps().Get(ctx, appID); err != nil {
				return fmt.Errorf("app %s: %w", appID, err)
			}

			plain, phc, err := apikey.Generate()
			if err != nil {
				return err
			}
			if err := store.Apps().SetAPIKeyHash(ctx, appID, phc); err != nil {
				return err
			}

			fmt.Printf("app_id: %s\napi_key: %s\n\nGuardala ahora: no se vuelve a mostrar.\n", appID, plain)
			return nil
		},
	}
}

func openStore(ctx context.Context, cfgPath string) (*config.Config, *pg.Store, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Storage.DSN == "" {
		return nil, nil, nil, fmt.Errorf("storage dsn is required (PERSONAVAULT_DSN)")
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "personavault"})
	log := logger.L()

	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	}, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, store, log, nil
}
