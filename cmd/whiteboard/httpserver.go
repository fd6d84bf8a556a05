package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultShutdownDeadline = 10 * time.Second

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,
	}
}

// runHTTPServer serves srv until ctx is cancelled, then attempts a
// graceful shutdown bounded by defaultShutdownDeadline. Grounded on the
// Run(ctx, wg, errc)-shaped server lifecycle used elsewhere in the pack
// for gorilla/websocket + zerolog servers.
func runHTTPServer(ctx context.Context, srv *http.Server, logger zerolog.Logger) {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped unexpectedly")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownDeadline)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("http server shutdown failed")
		}
	}
}
