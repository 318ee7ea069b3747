package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"pulseboard/internal/config"
	"pulseboard/internal/dataprocessing"
	apierrors "pulseboard/internal/errors"
	"pulseboard/internal/infrastructure"
	customMiddleware "pulseboard/internal/middleware"
	"pulseboard/internal/services"
	handlers "pulseboard/internal/transport/http"
	"pulseboard/internal/validation"
	ws "pulseboard/internal/websocket"
	"pulseboard/pkg/contracts"
	"pulseboard/pkg/contracts/domain"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Services      *ServiceContainer
	WebSocketHub  *ws.Hub
	ErrorHandler  *apierrors.ErrorHandler
}

// ServiceContainer holds all application services. Skills reports
// DATASET_UNAVAILABLE when the skills sources are disabled or failed to load.
type ServiceContainer struct {
	Skills     *services.SkillsService
	Healthcare *services.HealthcareService
	Health     *services.HealthService
	WebSocket  *ws.Server
}

// NewApplication loads configuration and builds the application
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(ctx, cfg, logger)
}

// New builds the application from an explicit configuration. Datasets are
// loaded here, once; requests only ever read them.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("build", contracts.GetFullVersionString()))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreatePipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices loads the datasets and builds the dashboard services
func (a *Application) initializeServices(ctx context.Context) error {
	inst := services.Instrumentation{
		Tracer:  a.OTelProviders.Tracer,
		Metrics: a.Metrics,
	}

	var skillsData *dataprocessing.SkillsData
	if a.Config.Data.SkillsEnabled {
		sources := dataprocessing.SkillsSources{
			ONETDir: a.Config.Data.ONETDir,
			ITUFile: a.Config.Data.ITUFile,
			BLSFile: a.Config.Data.BLSFile,
		}
		err := validation.NewSourceValidator(a.Logger).ValidateSkillsSources(sources)
		var data *dataprocessing.SkillsData
		if err == nil {
			data, err = dataprocessing.LoadSkills(ctx, sources, a.Logger)
		}
		if err != nil {
			// The healthcare dashboard still works without the skills files.
			a.Logger.ErrorContext(ctx, "Skills datasets unavailable",
				slog.String("error", err.Error()))
		} else {
			skillsData = data
		}
	}
	skills := services.NewSkillsService(skillsData, a.Config.Dashboard, inst, a.Logger)

	opts, err := dataprocessing.PatientOptionsFrom(a.Config.Healthcare)
	if err != nil {
		return err
	}
	patients, err := dataprocessing.GeneratePatients(opts)
	if err != nil {
		return fmt.Errorf("failed to generate patients: %w", err)
	}
	healthcare, err := services.NewHealthcareService(patients, inst, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize healthcare service: %w", err)
	}

	validator := customMiddleware.NewValidator()
	hub := ws.NewHub(a.Metrics, a.Logger)
	a.WebSocketHub = hub

	processor := ws.NewProcessor(skills, healthcare, validator)
	wsServer := ws.NewServer(hub, processor, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.ErrorHandler, a.Logger)

	health := services.NewHealthService(contracts.Version, contracts.BuildTime, map[string]services.DatasetProbe{
		domain.DashboardSkills:     skills,
		domain.DashboardHealthcare: healthcare,
	}, hub, a.Logger)

	a.Services = &ServiceContainer{
		Skills:     skills,
		Healthcare: healthcare,
		Health:     health,
		WebSocket:  wsServer,
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Only middleware that leaves the ResponseWriter hijackable runs before /ws.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", a.Services.WebSocket)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.corsConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := customMiddleware.NewValidator()

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(customMiddleware.Compress(5))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Mount("/skills", handlers.NewSkillsHandler(a.Services.Skills, validator, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/healthcare", handlers.NewHealthcareHandler(a.Services.Healthcare, validator, a.Logger, a.ErrorHandler).Routes())

		r.Post("/client-logs", handlers.NewClientLogHandler(validator, a.Logger, a.ErrorHandler).Handle)
	})
}

func (a *Application) corsConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		ExposedHeaders: []string{
			customMiddleware.RequestIDHeader,
			"Content-Disposition",
			"X-Export-Rows",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
	if a.Config.Security.EnableCORS {
		cfg.AllowedOrigins = a.Config.Security.AllowedOrigins
	}
	return cfg
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

// Start starts serving in the background. cancel is called if the listener
// fails.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.Bool("skills_available", a.Services.Skills.Available()),
		slog.Int("patients", a.Services.Healthcare.Rows()))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Server.Shutdown.
	a.WebSocketHub.Shutdown()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
