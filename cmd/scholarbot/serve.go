package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	dbembed "github.com/memohai/scholarbot/db"
	"github.com/memohai/scholarbot/internal/broadcast"
	"github.com/memohai/scholarbot/internal/cache"
	"github.com/memohai/scholarbot/internal/config"
	"github.com/memohai/scholarbot/internal/convstate"
	"github.com/memohai/scholarbot/internal/db"
	dbsqlc "github.com/memohai/scholarbot/internal/db/sqlc"
	"github.com/memohai/scholarbot/internal/dedup"
	"github.com/memohai/scholarbot/internal/eligibility"
	"github.com/memohai/scholarbot/internal/flow"
	"github.com/memohai/scholarbot/internal/handlers"
	"github.com/memohai/scholarbot/internal/logger"
	"github.com/memohai/scholarbot/internal/profiles"
	"github.com/memohai/scholarbot/internal/router"
	"github.com/memohai/scholarbot/internal/server"
	"github.com/memohai/scholarbot/internal/telegram"
	"github.com/memohai/scholarbot/internal/templates"
	"github.com/memohai/scholarbot/internal/version"
	"github.com/memohai/scholarbot/internal/watchdog"
)

const connectTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Telegram webhook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if migrate {
				log := logger.Init(cfg.Log.Level, cfg.Log.Format)
				if err := db.RunMigrate(log, cfg.Postgres, dbembed.MigrationsFS, "up", nil); err != nil {
					return err
				}
			}
			app := fx.New(
				appOptions(cfg),
				fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
					return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
				}),
			)
			app.Run()
			return app.Err()
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving.")
	return cmd
}

// appOptions is the dependency graph of the serve command.
func appOptions(cfg config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			provideLogger,
			provideDBConn,
			provideDBQueries,
			provideRedis,
			provideProfiles,
			provideEligibility,
			provideStates,
			provideDedup,
			provideMachine,
			provideRenderer,
			provideTelegram,
			provideOutbox,
			provideBroadcast,
			provideRouter,
			provideWatchdog,
			provideServerHandler(provideWebhookHandler),
			provideServerHandler(providePingHandler),
			provideServer,
		),
		fx.Invoke(
			startServer,
			startWatchdog,
		),
	)
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideLogger(lc fx.Lifecycle, cfg config.Config) (*slog.Logger, error) {
	file, err := logger.OpenFile(cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	var extra []io.Writer
	if file != nil {
		extra = append(extra, file)
		lc.Append(fx.StopHook(file.Close))
	}
	return logger.Init(cfg.Log.Level, cfg.Log.Format, extra...), nil
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	conn, err := db.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func provideDBQueries(conn *pgxpool.Pool) *dbsqlc.Queries {
	return dbsqlc.New(conn)
}

func provideRedis(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := cache.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	lc.Append(fx.StopHook(client.Close))
	return client, nil
}

func provideProfiles(log *slog.Logger, queries *dbsqlc.Queries) *profiles.Service {
	return profiles.NewService(log, queries)
}

func provideEligibility(log *slog.Logger, queries *dbsqlc.Queries, client *redis.Client, cfg config.Config) *eligibility.Index {
	return eligibility.NewIndex(log, queries, eligibility.NewRedisCache(client), cfg.Cache.EligibilityTTL.Duration)
}

func provideStates(log *slog.Logger, client *redis.Client, cfg config.Config) *convstate.Store {
	return convstate.NewStore(log, client, cfg.Cache.StateTTL.Duration)
}

func provideDedup(log *slog.Logger, client *redis.Client, cfg config.Config) *dedup.Guard {
	return dedup.NewGuard(log, client, cfg.Cache.DedupTTL.Duration)
}

func provideMachine(log *slog.Logger, profileService *profiles.Service, states *convstate.Store, index *eligibility.Index) *flow.Machine {
	return flow.NewMachine(log, profileService, states, index)
}

func provideRenderer(cfg config.Config) *templates.Renderer {
	return templates.NewRenderer(cfg.Links)
}

func provideTelegram(log *slog.Logger, cfg config.Config) (*telegram.Client, error) {
	client, err := telegram.NewClient(log, telegram.Options{Token: cfg.Telegram.Token})
	if err != nil {
		return nil, fmt.Errorf("telegram client: %w", err)
	}
	return client, nil
}

func provideOutbox(log *slog.Logger, renderer *templates.Renderer, client *telegram.Client) *router.Outbox {
	return router.NewOutbox(log, renderer, client)
}

func provideBroadcast(log *slog.Logger, profileService *profiles.Service, outbox *router.Outbox, cfg config.Config) *broadcast.Service {
	return broadcast.NewService(log, profileService, outbox, cfg.Operators)
}

func provideRouter(log *slog.Logger, machine *flow.Machine, broadcaster *broadcast.Service, outbox *router.Outbox) *router.Router {
	return router.New(log, machine, broadcaster, outbox)
}

func provideWebhookHandler(log *slog.Logger, cfg config.Config, guard *dedup.Guard, r *router.Router) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, cfg.Telegram.WebhookPath, guard, r)
}

func providePingHandler(log *slog.Logger, conn *pgxpool.Pool, client *redis.Client) *handlers.PingHandler {
	return handlers.NewPingHandler(log,
		handlers.HealthCheck{Name: "postgres", Ping: conn.Ping},
		handlers.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}},
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, server.Options{
		Addr:          params.Config.Server.ListenAddr(),
		WebhookPath:   params.Config.Telegram.WebhookPath,
		WebhookSecret: params.Config.Telegram.WebhookSecret,
	}, params.ServerHandlers...)
}

func provideWatchdog(log *slog.Logger, client *telegram.Client, outbox *router.Outbox, cfg config.Config) (*watchdog.Watchdog, error) {
	notify, _ := cfg.Operators.Primary()
	return watchdog.New(log, client, outbox, watchdog.Options{
		URL:             cfg.Telegram.WebhookURL,
		Secret:          cfg.Telegram.WebhookSecret,
		Spec:            cfg.Watchdog.Spec,
		MaxPendingCount: cfg.Watchdog.MaxPendingCount,
		NotifyChatID:    notify,
	})
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	log.Info("starting scholarbot", slog.String("version", version.Get().String()), slog.String("addr", srv.Addr()))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}

func startWatchdog(lc fx.Lifecycle, log *slog.Logger, w *watchdog.Watchdog, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// A failed registration is repaired by the next scheduled check.
			if err := w.Register(ctx); err != nil {
				log.Error("webhook registration failed", slog.Any("error", err))
			}
			if cfg.Watchdog.Disabled {
				log.Info("webhook watchdog disabled")
				return nil
			}
			w.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cfg.Watchdog.Disabled {
				return nil
			}
			return w.Stop(ctx)
		},
	})
}
