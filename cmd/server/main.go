package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"merocare/internal/config"
	"merocare/internal/database"
	"merocare/internal/handlers"
	"merocare/internal/llm"
	"merocare/internal/logging"
	"merocare/internal/notify"
	"merocare/internal/repository"
	"merocare/internal/security"
	"merocare/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startup := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepSeedTips,
		handlers.StepServices,
	)

	// Until the services are built only /healthz answers
	var app atomic.Value
	app.Store(http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			startup.Healthz(w, r)
			return
		}
		w.Header().Set("Retry-After", "5")
		http.Error(w, "Server is starting", http.StatusServiceUnavailable)
	})))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			app.Load().(http.Handler).ServeHTTP(w, r)
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Diagnosis calls wait on the LLM and websockets stay open
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "addr", "http://localhost"+addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	db, router, cleanup, err := initialize(ctx, cfg, startup)
	if err != nil {
		slog.Error("Startup failed", "error", err)
		shutdown(server)
		os.Exit(1)
	}
	defer db.Close()
	defer cleanup()

	app.Store(router.Handler())
	startup.MarkReady()
	slog.Info("Server ready", "database", cfg.DatabaseType)

	<-ctx.Done()
	slog.Info("Server shutting down...")
	shutdown(server)
}

func initialize(ctx context.Context, cfg *config.Config, startup *handlers.StartupStatus) (*database.DB, *handlers.Router, func(), error) {
	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	startup.CompleteStep(handlers.StepDatabase)
	slog.Info("Database connection established", "type", cfg.DatabaseType)

	startup.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	startup.CompleteStep(handlers.StepMigrations)
	slog.Info("Migrations completed successfully")

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	diagnosisRepo := repository.NewDiagnosisRepository(db)
	recordRepo := repository.NewMedicalRecordRepository(db)
	tipRepo := repository.NewHealthTipRepository(db)

	startup.SetCurrentStep(handlers.StepSeedTips)
	tipService := service.NewHealthTipService(tipRepo)
	if n, err := tipService.Seed(ctx, cfg.HealthTipsPath); err != nil {
		slog.Warn("Failed to seed health tips", "error", err)
	} else if n > 0 {
		slog.Info("Seeded health tips", "count", n)
	}
	startup.CompleteStep(handlers.StepSeedTips)

	startup.SetCurrentStep(handlers.StepServices)
	authService := service.NewAuthService(userRepo, security.NewTokenIssuer(cfg.SecretKey, cfg.AccessTokenExpiry))

	if cfg.GroqAPIKey == "" {
		slog.Warn("GROQ_API_KEY is not set, symptom checks will fail")
	}
	groq := llm.NewGroqClient(llm.GroqConfig{
		APIKey:  cfg.GroqAPIKey,
		Model:   cfg.GroqModel,
		BaseURL: cfg.GroqBaseURL,
		Timeout: cfg.LLMTimeout,
	})

	var mailer service.InviteMailer
	if cfg.SESFromEmail != "" {
		emailService, err := service.NewEmailService(ctx, cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
		if err != nil {
			slog.Warn("Invite emails disabled", "error", err)
		} else {
			mailer = emailService
		}
	}

	hub := notify.NewHub()
	go hub.Run(ctx)

	familyService := service.NewFamilyService(db, userRepo, familyRepo, diagnosisRepo, hub, mailer)
	diagnosisService := service.NewDiagnosisService(groq, diagnosisRepo, userRepo)

	rateLimiter := security.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	router := &handlers.Router{
		Middleware:     handlers.NewMiddleware(authService, rateLimiter),
		Startup:        startup,
		Auth:           handlers.NewAuthHandler(authService, oauthProviders, cfg.OAuthRedirectBaseURL, security.NewStateSigner(cfg.SecretKey)),
		Users:          handlers.NewUserHandler(service.NewUserService(userRepo)),
		Family:         handlers.NewFamilyHandler(familyService, hub, cfg.AllowedOrigins),
		Diagnosis:      handlers.NewDiagnosisHandler(diagnosisService),
		Records:        handlers.NewMedicalRecordHandler(service.NewMedicalRecordService(recordRepo)),
		HealthTips:     handlers.NewHealthTipHandler(tipService),
		AllowedOrigins: cfg.AllowedOrigins,
	}
	startup.CompleteStep(handlers.StepServices)

	return db, router, rateLimiter.Close, nil
}

func shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
