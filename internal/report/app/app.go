// Package app wires configuration, storage, services and the HTTP server
// into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	reporthttp "github.com/fieldops/salesreport/internal/report/http"
	"github.com/fieldops/salesreport/internal/report/service"
	"github.com/fieldops/salesreport/internal/report/store/drivers/sqlite"
	"github.com/fieldops/salesreport/pkg/jwtx"
	"github.com/fieldops/salesreport/pkg/ratelimit"
	"github.com/fieldops/salesreport/pkg/slogx"
)

// BuildVersion is stamped at link time via -ldflags.
var BuildVersion = "dev"

type Application struct {
	cfg    Config
	logger *slog.Logger

	store        *sqlite.Store
	limitStore   *ratelimit.MemoryStore
	housekeeping *service.HousekeepingService
	server       *http.Server
}

// New builds the full dependency graph. The returned Application owns every
// resource it opened and releases them in Shutdown.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slogx.New(slogx.Config{
		Service: "salesreport",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	st, err := sqlite.NewStore(cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.ApplyMigrations(); err != nil {
		st.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	tokens, err := jwtx.NewService([]byte(cfg.TokenSecret), cfg.Issuer, cfg.Audience,
		jwtx.WithTTLs(cfg.AccessTTL, cfg.RefreshTTL),
	)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("token service: %w", err)
	}

	limitStore := ratelimit.NewMemoryStore(cfg.RateLimitSweep)
	limiter, err := ratelimit.NewLimiter(limitStore, cfg.RateLimitTable())
	if err != nil {
		limitStore.Close()
		st.Close()
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	router := reporthttp.NewRouter(reporthttp.Config{
		Tokens:       tokens,
		Limiter:      limiter,
		Production:   cfg.Production(),
		AuthCookie:   cfg.AuthCookie,
		CSRFCookie:   cfg.CSRFCookie,
		BuildVersion: BuildVersion,
		Store:        st,
		Logger:       logger,
	})
	router.AuthService = &service.AuthService{Store: st, Tokens: tokens}
	router.ReportService = &service.ReportService{Store: st}
	router.CustomerService = &service.CustomerService{Store: st}
	router.ApplyRoutes()

	return &Application{
		cfg:          cfg,
		logger:       logger,
		store:        st,
		limitStore:   limitStore,
		housekeeping: service.NewHousekeepingService(st, logger, cfg.HousekeepingInterval),
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM or a listener
// failure, then shuts everything down gracefully.
func (a *Application) Run() error {
	a.housekeeping.Start()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening",
			slog.String("addr", a.server.Addr),
			slog.String("env", a.cfg.Env),
			slog.String("version", BuildVersion),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		a.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		a.logger.Error("http server failed", slogx.Err(err))
		a.Shutdown(context.Background())
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownGracePeriod)
	defer cancel()
	return a.Shutdown(ctx)
}

// Shutdown drains the HTTP server and releases every owned resource. Safe to
// call once.
func (a *Application) Shutdown(ctx context.Context) error {
	var firstErr error

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown", slogx.Err(err))
		firstErr = err
	}

	a.housekeeping.Stop()
	a.limitStore.Close()

	if err := a.store.Close(); err != nil {
		a.logger.Error("store close", slogx.Err(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	a.logger.Info("shutdown complete")
	return firstErr
}
