package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/iwvelando/payment-planner/internal/config"
	"github.com/iwvelando/payment-planner/internal/drafts"
	"github.com/iwvelando/payment-planner/internal/metrics"
	"github.com/iwvelando/payment-planner/internal/notify"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/iwvelando/payment-planner/internal/quotes"
	"github.com/iwvelando/payment-planner/internal/server"
	"github.com/iwvelando/payment-planner/internal/service"
	"github.com/iwvelando/payment-planner/internal/storage"
	"github.com/iwvelando/payment-planner/internal/storage/memory"
	"github.com/iwvelando/payment-planner/internal/storage/postgres"
	"github.com/iwvelando/payment-planner/pkg/adapters"
	"go.uber.org/zap"
)

// app holds the wired service and the resources it must release.
type app struct {
	logger   *zap.Logger
	conf     *config.Configuration
	server   *http.Server
	closers  []io.Closer
	listener net.Listener
}

// newApp wires the engine, stores and HTTP handler from the configuration.
// Empty postgres, redis and quote provider settings select the in-process
// implementations.
func newApp(ctx context.Context, conf *config.Configuration, logger *zap.Logger) (*app, error) {
	a := &app{logger: logger, conf: conf}

	profiles, err := adapters.ProfilesFromConfig(conf.Planner)
	if err != nil {
		return nil, fmt.Errorf("planner profiles: %w", err)
	}
	fallback, err := adapters.FallbackOffersFromConfig(conf.Planner)
	if err != nil {
		return nil, fmt.Errorf("fallback offers: %w", err)
	}
	engine := planner.NewEngine(logger, profiles, adapters.LendersFromConfig(conf.Planner))
	m := metrics.New(true)

	repo, err := a.openRepository(ctx)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, repo)

	draftStore, err := a.openDraftStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if conf.SMTP.Enabled {
		notifier = notify.NewSMTPNotifier(conf.SMTP, logger)
	}

	var provider quotes.Provider
	if conf.Quotes.BaseURL != "" {
		provider = quotes.NewHTTPProvider(conf.Quotes.BaseURL,
			quotes.WithTimeout(conf.Quotes.Timeout),
			quotes.WithAPIKey(conf.Quotes.APIKey),
			quotes.WithUserAgent(conf.Quotes.UserAgent),
		)
	}

	plans := service.NewPlanService(logger, engine, repo, draftStore, notifier, m)
	handler := server.NewHandler(server.Options{
		Logger:      logger,
		Plans:       plans,
		Quotes:      quotes.NewService(logger, engine, provider, fallback, m),
		Metrics:     m,
		Auth:        conf.Auth,
		MaxBodySize: conf.MaxBodySizeBytes(),
		Version:     version,
	})

	a.server = &http.Server{
		Addr:         conf.Server.Address,
		Handler:      handler,
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
		IdleTimeout:  conf.Server.IdleTimeout,
	}
	return a, nil
}

func (a *app) openRepository(ctx context.Context) (storage.PlanRepository, error) {
	cfg := a.conf.Postgres
	if cfg.DSN == "" {
		return memory.NewRepository(), nil
	}

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DSN, cfg.MigrationsPath); err != nil {
			return nil, err
		}
		a.logger.Info("database migrations applied",
			zap.String("op", "main.openRepository"),
			zap.String("migrations", cfg.MigrationsPath),
		)
	}
	return postgres.Open(ctx, cfg, a.logger)
}

func (a *app) openDraftStore(ctx context.Context) (drafts.Store, error) {
	cfg := a.conf.Redis
	if cfg.Address == "" {
		return drafts.NewMemoryStore(), nil
	}

	client, err := drafts.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client)

	opts := []drafts.RedisOption{}
	if cfg.KeyPrefix != "" {
		opts = append(opts, drafts.WithPrefix(cfg.KeyPrefix))
	}
	if cfg.DraftTTL > 0 {
		opts = append(opts, drafts.WithTTL(cfg.DraftTTL))
	}
	return drafts.NewRedisStore(client, a.logger, opts...), nil
}

// Run serves until ctx is cancelled and then shuts the server down
// gracefully.
func (a *app) Run(ctx context.Context) error {
	listener := a.listener
	if listener == nil {
		var err error
		listener, err = net.Listen("tcp", a.server.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", a.server.Addr, err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("serving payment planner",
			zap.String("op", "main.Run"),
			zap.String("address", listener.Addr().String()),
			zap.String("version", version),
		)
		errCh <- a.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.conf.Server.ShutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down",
		zap.String("op", "main.Run"),
	)
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the repository and draft store connections.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close resource",
				zap.String("op", "main.Close"),
				zap.Error(err),
			)
		}
	}
	a.closers = nil
}
