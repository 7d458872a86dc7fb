package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/chatrelay/internal/infrastructure/configs"
	"github.com/hilthontt/chatrelay/internal/infrastructure/logging"
	"github.com/hilthontt/chatrelay/internal/infrastructure/metrics"
	"github.com/hilthontt/chatrelay/internal/infrastructure/ratelimiter"
	filesHandler "github.com/hilthontt/chatrelay/internal/presentation/handler/files"
	healthHandler "github.com/hilthontt/chatrelay/internal/presentation/handler/health"
	relayHandler "github.com/hilthontt/chatrelay/internal/presentation/handler/relay"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Application struct {
	config         configs.Config
	relayHandler   relayHandler.Handler
	filesHandler   filesHandler.Handler
	healthHandler  healthHandler.Handler
	logger         logging.Logger
	ratelimiter    ratelimiter.Limiter
	metrics        *metrics.Metrics
	allowedOrigins map[string]struct{}
}

func NewApplication(
	config configs.Config,
	relayHandler relayHandler.Handler,
	filesHandler filesHandler.Handler,
	healthHandler healthHandler.Handler,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
	metrics *metrics.Metrics,
) *Application {
	allowed := make(map[string]struct{}, len(config.HTTP.AllowedOrigins))
	for _, origin := range config.HTTP.AllowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &Application{
		config:         config,
		relayHandler:   relayHandler,
		filesHandler:   filesHandler,
		healthHandler:  healthHandler,
		logger:         logger,
		ratelimiter:    ratelimiter,
		metrics:        metrics,
		allowedOrigins: allowed,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)
	r.Use(app.loggerMiddleware)

	// The relay endpoint stays outside the timeout group: websocket
	// sessions outlive any sane request deadline.
	r.Get("/ws", app.relayHandler.ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Post("/upload", app.filesHandler.UploadHandler)
		r.Get("/file/{fileId}", app.filesHandler.DownloadHandler)

		r.Handle("/metrics", app.metrics.Handler())

		r.Route("/api", func(r chi.Router) {
			r.Get("/health", app.healthHandler.GetHealth)
			r.Get("/healthz", app.healthHandler.GetHealth)
			r.Get("/live", app.healthHandler.GetHealth)
			r.Get("/ready", app.healthHandler.GetReady)
		})
	})

	return r
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      otelhttp.NewHandler(mux, "chatrelay"),
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Startup, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Startup, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
