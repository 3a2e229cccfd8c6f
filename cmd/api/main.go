package main

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

	"github.com/MrJamesThe3rd/apexrecon/internal/app"
	"github.com/MrJamesThe3rd/apexrecon/internal/config"
	"github.com/MrJamesThe3rd/apexrecon/internal/database"
	apiHttp "github.com/MrJamesThe3rd/apexrecon/internal/http"
	bankHandler "github.com/MrJamesThe3rd/apexrecon/internal/http/bank"
	invoiceHandler "github.com/MrJamesThe3rd/apexrecon/internal/http/invoice"
	matchingHandler "github.com/MrJamesThe3rd/apexrecon/internal/http/matching"
	reconHandler "github.com/MrJamesThe3rd/apexrecon/internal/http/reconciliation"
	reportHandler "github.com/MrJamesThe3rd/apexrecon/internal/http/report"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	applied, err := database.Migrate(db, cfg.DB.Name)
	if err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	slog.Info("database ready", "migrated", applied)

	svc := app.New(db)

	dispatcher, closePublisher, err := svc.Dispatcher(db, cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	var (
		invoiceH  = invoiceHandler.NewHandler(svc.Invoices)
		bankH     = bankHandler.NewHandler(svc.Bank, svc.Importer, svc.Matching)
		reconH    = reconHandler.NewHandler(svc.Reconciliation, svc.Ledgers, svc.Matching)
		matchingH = matchingHandler.NewHandler(svc.Matching)
		reportH   = reportHandler.NewHandler(svc.Reports)
	)

	router := apiHttp.New(apiHttp.Options{
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
	}, invoiceH, bankH, reconH, matchingH, reportH)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatchDone := make(chan error, 1)

	go func() {
		dispatchDone <- dispatcher.Run(ctx)
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "port", server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stop()
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	if err := <-dispatchDone; err != nil {
		return fmt.Errorf("outbox dispatcher: %w", err)
	}

	return nil
}
