package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"worktime/database"
	"worktime/handlers"
	"worktime/metrics"
	"worktime/middleware"
	"worktime/overtime"
	"worktime/reports"
	"worktime/workday"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Migrate the schema and seed the admin before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if serveMigrate {
		if err := database.Migrate(database.GetDB()); err != nil {
			return err
		}
		if err := database.SeedAdmin(ctx, a.store, a.cfg.AdminEmail, a.cfg.AdminPassword, a.logger); err != nil {
			return err
		}
	}

	middleware.SetJWTSecret(a.cfg.JWTSecret)
	m := metrics.New()

	opts := []workday.Option{workday.WithEvents(m)}
	deps := handlers.Deps{
		Config:   a.cfg,
		Store:    a.store,
		Clock:    a.clock,
		Logger:   a.logger,
		Reports:  reports.NewService(a.store, a.clock),
		Metrics:  m,
		Overtime: overtime.NewService(a.store, nil, a.logger),
	}
	if a.cache != nil {
		opts = append(opts, workday.WithInvalidator(a.cache))
		deps.Invalidator = a.cache
		deps.Overtime = overtime.NewService(a.store, a.cache, a.logger)
	}
	deps.WorkDays = workday.NewService(a.store, a.clock, a.logger, opts...)

	srv := &http.Server{
		Addr:              a.cfg.AppAddr,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", slog.String("addr", a.cfg.AppAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
