package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"xmlsheet/internal/config"
	"xmlsheet/internal/errors"
	"xmlsheet/internal/infrastructure"
	customMiddleware "xmlsheet/internal/middleware"
	"xmlsheet/internal/services"
	handlers "xmlsheet/internal/transport/http"
)

// Version is overridable at build time with -ldflags.
var Version = "dev"

// Application is the main application container. It wires configuration,
// logging, the conversion service, and the HTTP server together.
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	ConvertService *services.ConvertService
	Logger         *slog.Logger
}

// NewApplication loads configuration and builds a fully wired
// application ready to Start.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig builds the application from an already
// validated configuration. Tests use this to avoid touching the
// environment.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("service", "xmlsheet"),
		slog.String("version", Version))

	convertService, err := services.NewConvertService(cfg.Conversion, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize convert service: %w", err)
	}

	app := &Application{
		Config:         cfg,
		ConvertService: convertService,
		Logger:         logger,
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	errorHandler := errors.NewErrorHandler(a.Logger, false)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// Metrics stay outside the middleware group; scrapers should not
	// hit the rate limiter or show up in request logs.
	r.Get("/metrics", handlers.NewMetricsHandler().Metrics)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxBodyBytes))
		// Base64 workbook payloads compress well.
		r.Use(customMiddleware.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		healthHandler := handlers.NewHealthHandler(a.Logger, Version)
		convertHandler := handlers.NewConvertHandler(a.ConvertService, a.Logger, errorHandler)

		r.Get("/", healthHandler.Index)
		r.Route("/api", func(r chi.Router) {
			r.Get("/health", healthHandler.HealthCheck)
			r.Mount("/", convertHandler.Routes())
		})
	})

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (a *Application) Start(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "server listening",
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

// Stop gracefully stops the HTTP server
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	infrastructure.CloseLogFile()
	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}
