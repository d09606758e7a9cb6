// @title                       Maintenance Tracker API
// @version                     1.0
// @description                 Issue, report and account management for maintenance teams.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/mrt-platform/maintenance-tracker/internal/api"
	"github.com/mrt-platform/maintenance-tracker/internal/api/handler"
	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
	"github.com/mrt-platform/maintenance-tracker/internal/core/service"
	"github.com/mrt-platform/maintenance-tracker/internal/infrastructure/db/memory"
	mongostore "github.com/mrt-platform/maintenance-tracker/internal/infrastructure/db/mongo"
	redisstore "github.com/mrt-platform/maintenance-tracker/internal/infrastructure/db/redis"
	"github.com/mrt-platform/maintenance-tracker/internal/pkg/config"
	"github.com/mrt-platform/maintenance-tracker/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "maintenance-tracker",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("closing storage")
		}
	}()
	log.Info().Str("backend", cfg.Storage.Backend).Msg("storage ready")

	// --- Services ---
	tokens := service.NewJWTCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(st.users, tokens, cfg.Auth.BcryptCost, logger.Component("auth"))
	userService := service.NewUserService(st.users, cfg.Auth.BcryptCost, logger.Component("users"))
	issueService := service.NewIssueService(st.issues, st.users, logger.Component("issues"))
	reportService := service.NewReportService(st.reports, st.issues, logger.Component("reports"))
	guard := service.NewGuard(service.NewSessionVerifier(tokens, st.users), logger.Component("guard"))

	if cfg.Storage.SeedDemoUsers {
		if err := service.SeedDemoUsers(ctx, userService); err != nil {
			return err
		}
		log.Info().Int("accounts", len(service.DemoUsers)).Msg("demo users seeded")
	}

	e := api.NewRouter(api.Dependencies{
		Auth:    authService,
		Users:   userService,
		Issues:  issueService,
		Reports: reportService,
		Guard:   guard,
		Health:  st.health,
		Logger:  log,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}

// stores bundles the storage adapters selected by STORE_BACKEND.
type stores struct {
	users   ports.CredentialStore
	issues  ports.ResourceStore[domain.Issue]
	reports ports.ResourceStore[domain.Report]
	health  map[string]handler.Pinger
	close   func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return &stores{
			users:   service.NewCollectionCredentialStore(redisstore.NewUserCollection(rdb)),
			issues:  redisstore.NewIssueCollection(rdb),
			reports: redisstore.NewReportCollection(rdb),
			health: map[string]handler.Pinger{
				"redis": handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
			},
			close: func(context.Context) error { return rdb.Close() },
		}, nil

	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			users:   mongostore.NewUserRepository(db),
			issues:  mongostore.NewIssueCollection(db),
			reports: mongostore.NewReportCollection(db),
			health: map[string]handler.Pinger{
				"mongodb": handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) }),
			},
			close: client.Disconnect,
		}, nil

	default:
		return &stores{
			users:   service.NewCollectionCredentialStore(memory.NewCollection[domain.User]()),
			issues:  memory.NewCollection[domain.Issue](),
			reports: memory.NewCollection[domain.Report](),
			close:   func(context.Context) error { return nil },
		}, nil
	}
}
