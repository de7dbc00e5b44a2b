package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"overcooked-pos/config"
	httpapi "overcooked-pos/pos-svc/internal/api/http"
	"overcooked-pos/pos-svc/internal/auth"
	"overcooked-pos/pos-svc/internal/metrics"
	"overcooked-pos/pos-svc/internal/realtime"
	"overcooked-pos/pos-svc/internal/service"
	"overcooked-pos/pos-svc/internal/storage"
	"overcooked-pos/pos-svc/internal/storage/postgres"
	"overcooked-pos/pos-svc/internal/tenant"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Load()
	root := &cobra.Command{
		Use:           "pos-svc",
		Short:         "Restaurant point-of-sale core service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(cfg), newSweepCommand(cfg), newMigrateCommand(cfg))
	return root
}

func newServeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, websocket hub, receipts consumer and sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func newSweepCommand(cfg *config.Config) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the reservation sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, err := config.NewLogger(cfg.Logger, cfg.AppEnv)
			if err != nil {
				return err
			}
			defer logger.Sync()

			a, err := newApp(cfg, logger, metrics.NewUnregistered())
			if err != nil {
				return err
			}
			defer a.close()

			if !once {
				a.sweeper.Run(ctx)
				return nil
			}
			for tenantID, report := range a.sweeper.SweepOnce(ctx) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d no-show, %d expired, %d held\n",
					tenantID, len(report.NoShows), len(report.Expired), len(report.Held))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "sweep every tenant once and exit")
	return cmd
}

func newMigrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and tenant isolation policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := config.NewLogger(cfg.Logger, cfg.AppEnv)
			if err != nil {
				return err
			}
			defer logger.Sync()

			db := config.MustInitPostgres(cfg.Postgres, logger)
			defer db.Close()
			if err := postgres.EnsureSchema(cmd.Context(), db); err != nil {
				return err
			}
			logger.Info("schema is up to date")
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := config.NewLogger(cfg.Logger, cfg.AppEnv)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := newApp(cfg, logger, metrics.New(prometheus.DefaultRegisterer))
	if err != nil {
		return err
	}
	defer a.close()

	go func() {
		if err := a.relay.Run(ctx); err != nil {
			logger.Error("event relay stopped", zap.Error(err))
		}
	}()
	go a.consumer.Start(ctx)
	if cfg.Sweep.Enabled {
		go a.sweeper.Run(ctx)
	}

	router := httpapi.NewRouter(a.handler, a.verifier, a.hub, cfg.AllowedOrigins...)
	return httpapi.StartServer(ctx, cfg.HTTPAddr, router, logger)
}

type app struct {
	handler  *httpapi.Handler
	verifier *auth.Verifier
	hub      *realtime.Hub
	relay    *realtime.Relay
	consumer *service.ReceiptConsumer
	sweeper  *service.Sweeper
	closers  []func() error
}

func newApp(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*app, error) {
	tenants, err := tenant.LoadTenants(cfg.TenantsFile)
	if err != nil {
		return nil, err
	}

	db := config.MustInitPostgres(cfg.Postgres, logger)
	rdb := config.MustInitRedis(cfg.Redis, logger)
	eventsWriter := config.NewKafkaWriter(cfg.Kafka, cfg.Kafka.EventsTopic, logger)
	receiptsReader := config.NewKafkaReader(cfg.Kafka, cfg.Kafka.ReceiptsTopic)

	broker := tenant.NewBroker(db, tenant.Options{
		AcquireTimeout: cfg.Sessions.AcquireTimeout,
		TxTimeout:      cfg.Sessions.TxTimeout,
		LockTimeout:    cfg.Sessions.LockTimeout,
	}, logger)

	verifier := auth.NewVerifier(cfg.JWTSecret)
	hub := realtime.NewHub(verifier, hubOptions(cfg), logger, m)
	relay := realtime.NewRelay(rdb, hub, logger)

	deps := service.Deps{
		UoW:       postgres.NewUnitOfWork(broker),
		Settings:  tenants,
		Publisher: service.Fanout{hub, relay, storage.NewKafkaPublisher(eventsWriter)},
		Logger:    logger,
		Metrics:   m,
	}
	ledger := service.NewStockLedger(deps)
	reservations := service.NewReservationEngine(deps, service.DefaultQRGenerator{BaseURL: cfg.QRBaseURL})

	return &app{
		handler: httpapi.NewHandler(
			service.NewTabEngine(deps),
			service.NewKitchenQueue(deps),
			ledger,
			service.NewRecipeResolver(deps),
			reservations,
			service.NewLoyaltyEngine(deps),
			logger,
		),
		verifier: verifier,
		hub:      hub,
		relay:    relay,
		consumer: service.NewReceiptConsumer(receiptsReader, ledger, logger),
		sweeper:  service.NewSweeper(reservations, tenants, storage.NewRedisCache(rdb), cfg.Sweep.Interval, logger),
		closers: []func() error{
			func() error { hub.Close(); return nil },
			receiptsReader.Close,
			eventsWriter.Close,
			rdb.Close,
			db.Close,
		},
	}, nil
}

func hubOptions(cfg *config.Config) realtime.Options {
	opts := realtime.DefaultOptions()
	opts.AllowedOrigins = cfg.AllowedOrigins
	return opts
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c()
	}
}
