package system

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/hotset/internal/api"
	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/constants"
	"github.com/julianstephens/hotset/internal/logger"
)

// ServeCmd exposes the live tracker over HTTP for tablets on set.
type ServeCmd struct {
	Addr string `help:"Listen address." default:"${listen_addr}" env:"HOTSET_LISTEN_ADDR"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	srv := &http.Server{
		Addr:         c.Addr,
		Handler:      api.NewRouter(api.NewHandler(ctx.Service, ctx.Now)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("hotset server starting", "addr", c.Addr, "storage", ctx.Store.GetConfigPath(), "version", constants.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	ctx.Printf("Listening on http://%s\n", c.Addr)

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}
