package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/medchan-backend/internal/config"
	detectionsvc "github.com/heartmarshall/medchan-backend/internal/service/detection"
	messagesvc "github.com/heartmarshall/medchan-backend/internal/service/message"
	"github.com/heartmarshall/medchan-backend/internal/transport/middleware"
	"github.com/heartmarshall/medchan-backend/internal/transport/rest"
)

const rateLimitCleanupInterval = 5 * time.Minute

// NewHTTPHandler builds the HTTP handler of the record API over stores. The
// returned stop func releases the rate limiter.
func NewHTTPHandler(cfg *config.Config, logger *slog.Logger, stores *Stores) (http.Handler, func()) {
	detections := detectionsvc.NewService(logger, stores.Detections)
	messages := messagesvc.NewService(logger, stores.Messages)

	var (
		limit middleware.Middleware
		stop  = func() {}
	)
	if cfg.Server.RateLimitPerMinute > 0 {
		rl := middleware.NewRateLimiter(cfg.Server.RateLimitPerMinute, rateLimitCleanupInterval)
		limit = rl.Limit()
		stop = rl.Stop
	}

	mw := middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		limit,
		middleware.BodyLimit(cfg.Server.MaxBodyBytes),
	)

	handler := rest.NewRouter(rest.Handlers{
		Health:     rest.NewHealthHandler(BuildVersion(), map[string]rest.Checker{"database": stores.Ping}),
		Detections: rest.NewDetectionHandler(detections, logger),
		Messages:   rest.NewMessageHandler(messages, logger),
	}, mw)

	return handler, stop
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully within the configured timeout.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, stores *Stores) error {
	handler, stop := NewHTTPHandler(cfg, logger, stores)
	defer stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
