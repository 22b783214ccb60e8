package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wellstat/internal/handler"
	"github.com/abhisek/wellstat/internal/history"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fitted model over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, logStderr)
		if err != nil {
			return err
		}
		defer e.Close()

		port := e.cfg.Server.Port
		if p, _ := cmd.Flags().GetString("port"); p != "" {
			port = p
		}

		gin.SetMode(gin.ReleaseMode)
		h := handler.NewHandler(handler.Options{
			Model:            e.model,
			Scorer:           e.scorer(history.SourceHTTP),
			Events:           e.events(),
			DefaultThreshold: e.cfg.Threshold.Default,
			Logger:           e.logger,
		})
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler.NewRouter(h, e.logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			e.logger.Info("server starting", zap.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		e.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		e.logger.Info("server exited")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Port to listen on (overrides WELLSTAT_PORT and the config file)")
}
