package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/algoritmia-up/portal/internal/adapters/http/api"
	"github.com/algoritmia-up/portal/internal/adapters/http/swagger"
	"github.com/algoritmia-up/portal/internal/session"
	"github.com/algoritmia-up/portal/pkg/logger"
	"github.com/algoritmia-up/portal/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), e)
		},
	}
}

func serve(parent context.Context, e *env) error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.RegisterRuntimeCollectors()

	c, err := wire(e.cfg, e.log)
	if err != nil {
		return err
	}

	// The configured cookie is the backend's own session, used for the
	// initial load and the periodic sync.
	provider := session.NewProvider(c.gate)
	defer provider.Close()
	unsubscribe := provider.Subscribe(func(st session.State) {
		e.log.Info(ctx, "backend session resolved",
			logger.String("status", st.Status.String()),
			logger.String("role", st.Role.String()),
			logger.Bool("can_mutate", st.CanMutate()))
	})
	defer unsubscribe()
	provider.RefreshAsync(ctx, c.creds)

	if err := c.svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer c.svc.Stop()

	handler := api.NewServer(c.svc, c.gate,
		api.WithLogger(e.log.Named("http")),
		api.WithRequestTimeout(e.cfg.HTTPTimeout()+5*time.Second),
		api.WithDocs(func(r chi.Router) { swagger.Register(ctx, r) }),
	).Router()

	srv := &http.Server{
		Addr:              e.cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info(ctx, "starting HTTP server", logger.String("addr", e.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	e.log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	e.log.Info(ctx, "server stopped")
	return nil
}
