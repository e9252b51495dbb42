// Package server runs the document server: an in-memory remote store
// exposed over the HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/envelope-zero/tracker/internal/config"
	"github.com/envelope-zero/tracker/internal/remote/memory"
	"github.com/envelope-zero/tracker/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

// Run serves the API on the configured port until ctx is done. The listener
// address is sent on ready, if it is not nil, once the server accepts
// connections.
func Run(ctx context.Context, cfg config.Config, ready chan<- net.Addr) error {
	gin.SetMode(cfg.GinMode)

	store := memory.New()
	defer store.Close()

	r, teardown, err := router.Config(router.Options{
		AllowOrigins: cfg.CORSAllowOrigins,
		EnablePprof:  cfg.EnablePprof,
	})
	if err != nil {
		return err
	}
	defer teardown()

	router.AttachRoutes(r.Group("/"), store.Gateway())

	ln, err := net.Listen("tcp", net.JoinHostPort("", cfg.Port))
	if err != nil {
		return fmt.Errorf("listening on port %s: %w", cfg.Port, err)
	}

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(ln)
	}()

	log.Info().Str("address", ln.Addr().String()).Msg("Serving")
	if ready != nil {
		ready <- ln.Addr()
	}

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	// Ends all websocket subscriptions, they are not tracked by Shutdown
	store.Close()

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
