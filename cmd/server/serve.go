package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/chronolog/internal/config"
	"github.com/chronolog/internal/handler"
	"github.com/chronolog/internal/logger"
	"github.com/chronolog/internal/router"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address, overrides --port")
	cmd.Flags().String("port", "", "listen port")
	mustBind(config.KeyListenAddr, cmd.Flags().Lookup("addr"))
	mustBind(config.KeyPort, cmd.Flags().Lookup("port"))
	return cmd
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.GinMode != "" {
		gin.SetMode(a.cfg.GinMode)
	}

	api := handler.NewAPI(a.db, a.logs, a.classify, a.habits, a.analytics).
		WithLogger(logger.ForComponent(a.logger, "http"))
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           router.SetupRouter(api, a.cfg.SessionSecret, logger.ForComponent(a.logger, "router")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
