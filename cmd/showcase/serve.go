package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/showcase/internal/config"
	"github.com/mesh-intelligence/showcase/internal/server"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the content store over HTTP",
		Long: `Serve exposes the configured slot store and registry drafts over HTTP
for clients using the http backend. Uploaded files in the fs assets
directory are served under assets.base_url.

The log level follows config.yaml while the server runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Backend == types.BackendHTTP {
				return fmt.Errorf("serve needs a local backend, config has %q", c.cfg.Backend)
			}
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			return c.withApp(cmd.Context(), func(a *app) error {
				return c.serve(cmd.Context(), a, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}

func (c *cli) serve(ctx context.Context, a *app, addr string) error {
	logger := a.logger

	c.loader.Watch(func(next config.Config, err error) {
		if err != nil {
			logger.Warn("config reload failed", zap.Error(err))
			return
		}
		if c.flagLogLevel != "" {
			return
		}
		if err := c.log.SetLevel(next.Log.Level); err != nil {
			logger.Warn("config reload ignored", zap.Error(err))
			return
		}
		logger.Info("log level changed", zap.String("level", c.log.Level().String()))
	})

	srv := server.New(a.slots, a.drafts, server.Options{
		Logger:         logger.Named("http"),
		AllowedOrigins: c.cfg.Server.AllowedOrigins,
		AssetsDir:      a.assetsDir,
		AssetsURL:      c.cfg.Assets.BaseURL,
		Debug:          c.log.Level() == zapcore.DebugLevel,
	})
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("backend", c.cfg.Backend))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return systemErr(fmt.Errorf("server error: %w", err))
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return systemErr(fmt.Errorf("forced shutdown: %w", err))
	}
	return nil
}
