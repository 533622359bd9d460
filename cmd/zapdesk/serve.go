package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/zapdesk/zapdesk/internal/config"
	"github.com/zapdesk/zapdesk/internal/credstore"
	"github.com/zapdesk/zapdesk/internal/db"
	dbsqlc "github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/errtrack"
	"github.com/zapdesk/zapdesk/internal/flow"
	"github.com/zapdesk/zapdesk/internal/handlers"
	"github.com/zapdesk/zapdesk/internal/housekeeping"
	"github.com/zapdesk/zapdesk/internal/ingest"
	"github.com/zapdesk/zapdesk/internal/logger"
	"github.com/zapdesk/zapdesk/internal/media"
	"github.com/zapdesk/zapdesk/internal/metrics"
	"github.com/zapdesk/zapdesk/internal/notify"
	"github.com/zapdesk/zapdesk/internal/server"
	"github.com/zapdesk/zapdesk/internal/session"
	"github.com/zapdesk/zapdesk/internal/ticket"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

func runServe(cfgPath string) {
	fx.New(
		fx.Provide(
			func() (config.Config, error) { return provideConfig(cfgPath) },
			provideLogger,
			provideDBConn,
			provideDBQueries,
			provideNATSConn,
			providePromRegistry,
			provideMetrics,
			provideReporter,
			provideNotifier,
			provideCredStore,
			provideUnreadCounters,
			provideMediaStore,
			provideDialer,
			provideKeyedMutex,
			provideResolver,
			provideRater,
			provideTicketService,
			provideAssistant,
			provideFlowService,
			provideRouter,
			providePipeline,
			session.NewRegistry,
			provideManager,
			provideHousekeeping,
			handlers.NewPingHandler,
			provideAuthHandler,
			provideWhatsappHandler,
			provideTicketHandler,
			provideMessageHandler,
			provideServer,
		),
		fx.Invoke(
			runMigrations,
			startManager,
			startHousekeeping,
			startServer,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideConfig(cfgPath string) (config.Config, error) {
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Connect(context.Background(), cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideDBQueries(conn *pgxpool.Pool) *dbsqlc.Queries { return dbsqlc.New(conn) }

func provideNATSConn(lc fx.Lifecycle, cfg config.Config) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.NATS.URL, nats.RetryOnFailedConnect(true))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { nc.Close(); return nil }})
	return nc, nil
}

func providePromRegistry() *prometheus.Registry { return prometheus.NewRegistry() }

func provideMetrics(reg *prometheus.Registry) *metrics.Metrics { return metrics.New(reg) }

func provideReporter(log *slog.Logger, m *metrics.Metrics) errtrack.Reporter {
	return errtrack.NewLogReporter(log, m)
}

func provideNotifier(nc *nats.Conn, log *slog.Logger) notify.Notifier {
	return notify.NewNATS(nc, log)
}

func provideCredStore(nc *nats.Conn, cfg config.Config, log *slog.Logger) (credstore.Store, error) {
	return credstore.NewNATS(nc, cfg.NATS.CredsBucket, log)
}

func provideUnreadCounters(nc *nats.Conn) (ticket.Counters, error) {
	return ticket.NewNATSCounters(nc, "contact_unreads")
}

func provideMediaStore(cfg config.Config, log *slog.Logger) media.Store {
	return media.NewFSStore(cfg.Media.Root, log)
}

func provideDialer(nc *nats.Conn, log *slog.Logger) wanet.Dialer {
	return wanet.NewBridgeDialer(nc, log)
}

func provideKeyedMutex() *ticket.KeyedMutex { return ticket.NewKeyedMutex(0) }

func provideResolver(queries *dbsqlc.Queries, locks *ticket.KeyedMutex, unreads ticket.Counters, m *metrics.Metrics, log *slog.Logger) *ticket.Resolver {
	return ticket.NewResolver(queries, locks, unreads, m, log)
}

func provideRater(queries *dbsqlc.Queries, m *metrics.Metrics, log *slog.Logger) *ticket.Rater {
	return ticket.NewRater(queries, m, log)
}

func provideTicketService(queries *dbsqlc.Queries, notifier notify.Notifier, log *slog.Logger) *ticket.Service {
	return ticket.NewService(queries, notifier, log)
}

// provideAssistant is the AI-collaborator seam. Nothing ships by default;
// connections with an assistant prompt fall through to the queue menu.
func provideAssistant() flow.Assistant { return nil }

func provideFlowService(queries *dbsqlc.Queries, rater *ticket.Rater, notifier notify.Notifier, store media.Store, assistant flow.Assistant, log *slog.Logger) *flow.Service {
	return flow.NewService(queries, rater, notifier, store, assistant, log)
}

func provideRouter(queries *dbsqlc.Queries, notifier notify.Notifier, store media.Store, log *slog.Logger) *ingest.Router {
	return ingest.NewDefaultRouter(
		ingest.NewTextHandler(queries, notifier),
		ingest.NewMediaHandler(queries, notifier, store, log),
		ingest.NewVCardHandler(queries, notifier),
		ingest.NewEditedHandler(queries, notifier, log),
	)
}

func providePipeline(queries *dbsqlc.Queries, resolver *ticket.Resolver, router *ingest.Router, flowSvc *flow.Service, m *metrics.Metrics, reporter errtrack.Reporter, notifier notify.Notifier, log *slog.Logger) session.MessageSink {
	return ingest.NewPipeline(queries, resolver, router, flowSvc, m, reporter, notifier, log)
}

func provideManager(cfg config.Config, dialer wanet.Dialer, registry *session.Registry, queries *dbsqlc.Queries, creds credstore.Store, notifier notify.Notifier, m *metrics.Metrics, reporter errtrack.Reporter, sink session.MessageSink, log *slog.Logger) *session.Manager {
	return session.NewManager(cfg.Session, dialer, registry, queries, creds, notifier, m, reporter, sink, log)
}

func provideHousekeeping(cfg config.Config, queries *dbsqlc.Queries, tickets *ticket.Service, registry *session.Registry, log *slog.Logger) *housekeeping.Jobs {
	return housekeeping.New(cfg.Sweep, queries, tickets, registry, log)
}

func provideAuthHandler(queries *dbsqlc.Queries, cfg config.Config, log *slog.Logger) *handlers.AuthHandler {
	return handlers.NewAuthHandler(queries, cfg.Auth, cfg.Admin, log)
}

func provideWhatsappHandler(queries *dbsqlc.Queries, manager *session.Manager, log *slog.Logger) *handlers.WhatsappHandler {
	return handlers.NewWhatsappHandler(queries, manager, log)
}

func provideTicketHandler(queries *dbsqlc.Queries, service *ticket.Service, registry *session.Registry, unreads ticket.Counters, log *slog.Logger) *handlers.TicketHandler {
	return handlers.NewTicketHandler(queries, service, registry, unreads, log)
}

func provideMessageHandler(queries *dbsqlc.Queries, registry *session.Registry, log *slog.Logger) *handlers.MessageHandler {
	return handlers.NewMessageHandler(queries, registry, log)
}

func provideServer(cfg config.Config, log *slog.Logger, reg *prometheus.Registry, ping *handlers.PingHandler, authH *handlers.AuthHandler, waH *handlers.WhatsappHandler, ticketH *handlers.TicketHandler, msgH *handlers.MessageHandler) *server.Server {
	return server.NewServer(cfg.Server.Addr, cfg.Auth.JWTSecret, log, reg, ping, authH, waH, ticketH, msgH)
}

func runMigrations(cfg config.Config, log *slog.Logger) error {
	if err := db.Migrate(cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("database migrations applied")
	return nil
}

func startManager(lc fx.Lifecycle, manager *session.Manager) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go manager.StartAll(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			manager.Shutdown(ctx)
			return nil
		},
	})
}

func startHousekeeping(lc fx.Lifecycle, jobs *housekeeping.Jobs) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return jobs.Start() },
		OnStop:  func(ctx context.Context) error { jobs.Stop(ctx); return nil },
	})
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
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
