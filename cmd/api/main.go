// Package main is the entrypoint for the kmtracker API server.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/kmtracker/kmtracker/internal/auth"
	"github.com/kmtracker/kmtracker/internal/cache"
	"github.com/kmtracker/kmtracker/internal/config"
	"github.com/kmtracker/kmtracker/internal/distance"
	"github.com/kmtracker/kmtracker/internal/handler"
	"github.com/kmtracker/kmtracker/internal/maps"
	"github.com/kmtracker/kmtracker/internal/metrics"
	"github.com/kmtracker/kmtracker/internal/middleware"
	"github.com/kmtracker/kmtracker/internal/repository"
	"github.com/kmtracker/kmtracker/internal/server"
	"github.com/kmtracker/kmtracker/internal/service"
)

// handlers groups everything the router mounts.
type handlers struct {
	base      *handler.Handler
	health    *handler.HealthHandler
	metrics   *handler.MetricsHandler
	auth      *handler.AuthHandler
	maps      *handler.MapsHandler
	trips     *handler.TripHandler
	favorites *handler.FavoriteHandler
	addresses *handler.AddressHandler
	backup    *handler.BackupHandler
}

func main() {
	ctx := context.Background()

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.AutoMigrate {
		if err := repository.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			logger.Error("failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("path", cfg.MigrationsPath),
			)
			os.Exit(1)
		}
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()

	// Maps SDK loader and distance resolver
	var (
		sdkLoader      handler.SDKLoader
		primary        distance.Provider
		resolverLoader distance.SDKLoader
	)
	if cfg.MapsEnabled() {
		loader := maps.NewLoader(maps.LoaderConfig{
			Adapter:       maps.NewScriptAdapter(cfg.MapsScriptURL, cfg.MapsAPIKey, cfg.MapsCallback, cfg.PublicOrigin),
			Origin:        cfg.PublicOrigin,
			RetryCooldown: cfg.MapsLoadRetryCooldown,
			Timeout:       cfg.MapsLoadTimeout,
			Logger:        logger,
			Metrics:       recorder,
		})
		google, err := distance.NewGoogleProvider(cfg.MapsAPIKey, cfg.PublicOrigin,
			distance.WithBaseURL(cfg.MapsDistanceMatrixURL),
			distance.WithHTTPClient(&http.Client{Timeout: cfg.DistanceRequestTimeout}),
		)
		if err != nil {
			logger.Error("failed to create distance provider", "error", err)
			os.Exit(1)
		}
		sdkLoader, resolverLoader, primary = loader, loader, google
	} else {
		logger.Warn("MAPS_API_KEY not set, distances will be estimated")
	}

	resolver := distance.NewResolver(distance.ResolverConfig{
		Primary:       primary,
		Fallback:      distance.NewFallbackEstimator(cfg.FallbackDelay, nil),
		Loader:        resolverLoader,
		Cache:         cacheClient,
		CacheTTL:      cfg.DistanceCacheTTL,
		RetryInterval: cfg.DistanceRetryInterval,
		Logger:        logger,
		Metrics:       recorder,
	})

	// Services
	broker := service.NewHomeAddressBroker(0)
	tripService := service.NewTripService(repo, resolver, recorder, logger)
	favoriteService := service.NewFavoriteService(repo, recorder, logger)
	addressService := service.NewAddressService(repo, broker, recorder, logger)
	accountService := service.NewAccountService(repo, tokens, logger)
	backupService := service.NewBackupService(repo, repo, repo, recorder)

	h := handlers{
		base:      handler.New(),
		health:    handler.NewHealthHandler(repo, cacheClient, sdkLoader),
		metrics:   handler.NewMetricsHandler(recorder),
		auth:      handler.NewAuthHandler(accountService, logger),
		maps:      handler.NewMapsHandler(maps.NewClientConfig(cfg.MapsScriptURL, cfg.MapsAPIKey, cfg.MapsCallback), sdkLoader, resolver, logger),
		trips:     handler.NewTripHandler(tripService, logger),
		favorites: handler.NewFavoriteHandler(favoriteService, logger),
		addresses: handler.NewAddressHandler(addressService, logger, cfg.EventHeartbeat),
		backup:    handler.NewBackupHandler(backupService, logger),
	}

	r := setupRouter(h, tokens, cacheClient, cfg, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first, closed last.
	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"public_origin", cfg.PublicOrigin,
		"env", cfg.AppEnv,
		"maps_enabled", cfg.MapsEnabled(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "kmtracker")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h handlers,
	tokens middleware.TokenParser,
	limiter middleware.RateLimiter,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:            logger,
		Limiter:           limiter,
		UserRatePerMinute: cfg.RateLimitUserPerMinute,
		UserBurst:         cfg.RateLimitUserBurst,
		IPRatePerMinute:   cfg.RateLimitIPPerMinute,
		IPBurst:           cfg.RateLimitIPBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Credential endpoints are limited per client IP.
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimitIP(rateLimitCfg))
			r.Post("/register", h.auth.Register)
			r.Post("/login", h.auth.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(middleware.AuthConfig{Logger: logger, Tokens: tokens}))
			r.Use(middleware.RateLimitUser(rateLimitCfg))

			r.Route("/maps", func(r chi.Router) {
				r.Get("/config", h.maps.Config)
				r.Post("/load", h.maps.Load)
				r.Post("/place-label", h.maps.PlaceLabel)
			})

			r.Route("/trips", func(r chi.Router) {
				r.Get("/", h.trips.List)
				r.Post("/", h.trips.Create)
				r.Delete("/{id}", h.trips.Delete)
			})

			r.Get("/reports", h.trips.Report)
			r.Get("/reports/export.csv", h.trips.ExportCSV)
			r.Get("/backup", h.backup.Download)
			r.Get("/backup/trips.csv", h.backup.TripsCSV)

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", h.favorites.List)
				r.Post("/", h.favorites.Create)
				r.Delete("/{id}", h.favorites.Delete)
			})

			r.Route("/addresses/home", func(r chi.Router) {
				r.Get("/", h.addresses.GetHome)
				r.Put("/", h.addresses.SetHome)
				r.Delete("/", h.addresses.ClearHome)
				r.Get("/events", h.addresses.Events)
			})
		})
	})

	r.NotFound(h.base.NotFound)
	r.MethodNotAllowed(h.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL strips the password from a connection URL.
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
