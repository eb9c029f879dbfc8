// Package main is the entrypoint for the Contactdex API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/contactdex/contactdex/internal/auth"
	"github.com/contactdex/contactdex/internal/cache"
	"github.com/contactdex/contactdex/internal/config"
	"github.com/contactdex/contactdex/internal/handler"
	"github.com/contactdex/contactdex/internal/mail"
	"github.com/contactdex/contactdex/internal/metrics"
	"github.com/contactdex/contactdex/internal/middleware"
	"github.com/contactdex/contactdex/internal/repository"
	"github.com/contactdex/contactdex/internal/server"
	"github.com/contactdex/contactdex/internal/service"
	"github.com/contactdex/contactdex/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Run migrations before opening the pool.
	if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error(
			"failed to run migrations",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.EmailTokenTTL)
	sender := mail.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom, cfg.BaseURL, logger, cfg.IsDevelopment())

	var avatars storage.AvatarStore
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			logger.Error("failed to initialize object storage", "error", err)
			os.Exit(1)
		}
		avatars = s3Store
		logger.Info("object storage configured", "bucket", cfg.S3Bucket)
	} else {
		avatars = storage.NewNoopStore(logger)
		logger.Warn("object storage not configured, avatar uploads will be discarded")
	}

	recorder := metrics.NewInMemory()
	userService := service.NewUserService(repo, cacheClient, logger, recorder)
	contactService := service.NewContactService(repo, recorder)

	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(recorder)
	authHandler := handler.NewAuthHandler(userService, tokens, sender, logger)
	contactHandler := handler.NewContactHandler(contactService, logger)
	userHandler := handler.NewUserHandler(userService, avatars, logger)

	r := setupRouter(routerDeps{
		health:   healthHandler,
		metrics:  metricsHandler,
		auth:     authHandler,
		contacts: contactHandler,
		users:    userService,
		user:     userHandler,
		tokens:   tokens,
		cache:    cacheClient,
		cfg:      cfg,
		logger:   logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	health   *handler.HealthHandler
	metrics  *handler.MetricsHandler
	auth     *handler.AuthHandler
	contacts *handler.ContactHandler
	users    *service.UserService
	user     *handler.UserHandler
	tokens   *auth.TokenManager
	cache    *cache.Cache
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metrics.Metrics)
	r.Get("/", handler.Hello)

	authCfg := middleware.AuthConfig{
		Logger: d.logger,
		Tokens: d.tokens,
		Users:  d.users,
	}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:            d.logger,
		Cache:             d.cache,
		UserEnabled:       d.cfg.RateLimitEnabled,
		UserRatePerMinute: d.cfg.RateLimitPerMinute,
		UserBurst:         d.cfg.RateLimitBurst,
		IPEnabled:         d.cfg.RateLimitEnabled,
		IPRPS:             d.cfg.RateLimitAuthRPS,
		IPBurst:           d.cfg.RateLimitAuthBurst,
	}

	// Auth endpoints are open but rate limited per IP.
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Post("/signup", d.auth.Signup)
		r.Post("/login", d.auth.Login)
		r.Get("/refresh_token", d.auth.Refresh)
		r.Get("/confirm/{token}", d.auth.ConfirmEmail)
		r.Post("/request_email", d.auth.RequestEmail)
		r.Post("/password/reset", d.auth.RequestPasswordReset)
		r.Post("/password/reset/{token}", d.auth.ApplyPasswordReset)
	})

	// Everything below requires a valid access token.
	r.Route("/api/contacts", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitUser(rateLimitCfg))

		r.Get("/", d.contacts.List)
		r.Post("/", d.contacts.Create)
		r.Get("/{id}", d.contacts.Get)
		r.Put("/{id}", d.contacts.Update)
		r.Patch("/{id}", d.contacts.UpdateDateOfBirth)
		r.Delete("/{id}", d.contacts.Delete)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitUser(rateLimitCfg))

		r.Get("/me", d.user.Me)
		r.Patch("/avatar", d.user.UpdateAvatar)
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
