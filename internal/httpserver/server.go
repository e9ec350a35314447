package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
)

// ShutdownTimeout bounds how long in-flight requests may finish after ctx is done.
const ShutdownTimeout = 30 * time.Second

// Run serves until ctx is cancelled and then shuts the server down gracefully.
func Run(ctx context.Context, server *http.Server, log logger.Logger) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}
	return Serve(ctx, server, ln, log)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, server *http.Server, ln net.Listener, log logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", map[string]interface{}{
			"address": ln.Addr().String(),
		})
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	<-errCh

	log.Info(context.Background(), "server stopped", nil)
	return nil
}
