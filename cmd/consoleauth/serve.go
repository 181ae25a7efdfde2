package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/consoleauth/internal/httpapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the login API on --addr.

Without --redis-addr an in-process Redis is used and the default admin is
seeded on startup, since nothing would survive a restart anyway.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := loadSettings(v)
			logger, err := newLogger(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := openService(ctx, s, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.inMemory {
				logger.Warn("REDIS_ADDR not set, using in-process redis")
			}
			if seed || rt.inMemory {
				if _, err := seedAdmin(ctx, rt.engine, s, logger); err != nil {
					return err
				}
			}

			srv := httpapi.New(rt.engine, logger).NewHTTPServer(s.Addr)
			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", s.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "ensure the default admin exists before serving")
	return cmd
}
