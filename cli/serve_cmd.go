package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"workforce-engine/api"
	"workforce-engine/store"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API backed by the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			server, closeDB, err := a.buildServer()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.runServer(ctx, server)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides server.port)")
	return cmd
}

// buildServer opens the database and assembles the HTTP server. The returned
// func closes the database pool.
func (a *app) buildServer() (*http.Server, func(), error) {
	db, err := store.Open(&a.cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	defaults, err := forecastDefaults(a.cfg.Forecast)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	vopts, err := a.validationOptions("")
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	h := api.NewHandler(store.NewGormStore(db), api.Options{
		ForecastDefaults: defaults,
		Validation:       vopts,
		Logger:           a.logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           api.NewRouter(h, a.cfg.Server),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server, closeDB, nil
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func (a *app) runServer(ctx context.Context, server *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info(ctx, "http_server_started", "HTTP server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		a.logger.Info(ctx, "http_server_stopped", "server gracefully stopped")
		return nil
	})

	return g.Wait()
}
