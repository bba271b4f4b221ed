package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/api-sage/bank-viewer/src/internal/adapter/http/controller"
	"github.com/api-sage/bank-viewer/src/internal/adapter/http/middleware"
	"github.com/api-sage/bank-viewer/src/internal/adapter/http/router"
	"github.com/api-sage/bank-viewer/src/internal/adapter/provider"
	"github.com/api-sage/bank-viewer/src/internal/adapter/repository/memory"
	"github.com/api-sage/bank-viewer/src/internal/adapter/repository/postgres"
	"github.com/api-sage/bank-viewer/src/internal/config"
	"github.com/api-sage/bank-viewer/src/internal/domain"
	"github.com/api-sage/bank-viewer/src/internal/logger"
	"github.com/api-sage/bank-viewer/src/internal/usecase/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	audits, closeAudits, err := openAuditRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAudits()

	handler, err := newHandler(cfg, memory.NewTokenStore(), audits)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2*cfg.ProviderTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", logger.Fields{
			"addr":        cfg.ListenAddr,
			"redirectUri": cfg.RedirectURI,
			"audit":       cfg.DatabaseDSN != "",
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("server shutting down", nil)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newHandler wires the provider client, stores, services and controllers
// into the complete HTTP handler.
func newHandler(cfg config.Config, tokens domain.TokenStore, audits domain.ExchangeAuditRepository) (http.Handler, error) {
	client, err := provider.NewClient(provider.Config{
		AuthURL:           cfg.AuthURL,
		APIBaseURL:        cfg.APIBaseURL,
		ClientID:          cfg.ClientID,
		ClientSecret:      cfg.ClientSecret,
		RedirectURI:       cfg.RedirectURI,
		RequestTimeout:    cfg.ProviderTimeout,
		TransactionsLimit: cfg.TransactionsLimit,
	})
	if err != nil {
		return nil, err
	}

	authService := services.NewAuthService(client, tokens, memory.NewOAuthStateRepository(0), audits)
	bankingService := services.NewBankingService(client, tokens)

	mux := router.New(
		controller.NewAuthController(authService),
		controller.NewBankingController(bankingService),
		middleware.RequireCredential(tokens, "/"),
	)

	var basicAuth func(http.Handler) http.Handler
	if cfg.BasicAuthEnabled() {
		basicAuth = middleware.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPassword)
	}

	return middleware.Chain(mux, middleware.RequestLog, middleware.Recover, basicAuth), nil
}

// openAuditRepository returns the Postgres-backed audit log when a database
// is configured and an in-memory one otherwise.
func openAuditRepository(ctx context.Context, cfg config.Config) (domain.ExchangeAuditRepository, func(), error) {
	if cfg.DatabaseDSN == "" {
		return memory.NewExchangeAuditRepository(0), func() {}, nil
	}

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := postgres.Open(openCtx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}

	applied, err := postgres.RunMigrations(openCtx, db, cfg.MigrationsDir)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", logger.Fields{"versions": applied})
	}

	return postgres.NewExchangeAuditRepository(db), func() { _ = db.Close() }, nil
}
