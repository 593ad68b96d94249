// Package server assembles and runs the facade: fiber app, middleware chain,
// rate limiter store selection, gateway wiring, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/contentkit/openai-gateway/internal/api"
	"github.com/contentkit/openai-gateway/internal/config"
	"github.com/contentkit/openai-gateway/internal/middleware"
	"github.com/contentkit/openai-gateway/internal/models"
	"github.com/contentkit/openai-gateway/internal/services/gateway"
	"github.com/contentkit/openai-gateway/internal/services/generation"
	"github.com/contentkit/openai-gateway/internal/services/ratelimit"
	"github.com/contentkit/openai-gateway/internal/services/response"
	"github.com/contentkit/openai-gateway/internal/services/upstream"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Server is one facade instance.
type Server struct {
	config   *config.Config
	settings *config.Settings
	app      *fiber.App
	redis    *redis.Client
}

// New creates a server from static config and the runtime settings store.
// Both are required.
func New(cfg *config.Config, settings *config.Settings) *Server {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() to create config")
	}
	if settings == nil {
		panic("settings cannot be nil - use config.NewSettings() to create settings")
	}

	return &Server{config: cfg, settings: settings}
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogLevel(s.config)

	listenAddr := ":" + s.config.Server.Port

	s.app = createFiberApp(s.config)

	redisClient, err := createRedisClient(s.config)
	if err != nil {
		return fmt.Errorf("failed to create Redis client: %w", err)
	}
	s.redis = redisClient

	if s.redis != nil {
		defer func() {
			if err := s.redis.Close(); err != nil {
				fiberlog.Errorf("Failed to close Redis client: %v", err)
			}
		}()
	}

	limiter := s.createLimiter()

	client := gateway.NewClient(s.config.Upstream.BaseURL, s.settings)

	setupMiddleware(s.app, s.config, limiter)
	setupRoutes(s.app, s.settings, s.redis, client)

	fmt.Printf("OpenAI gateway starting on %s\n", listenAddr)
	fmt.Printf("   Environment: %s\n", s.config.Server.Environment)
	fmt.Printf("   Go version: %s\n", runtime.Version())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(listenAddr); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fiberlog.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	}

	fiberlog.Info("Server shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	shutdownErrChan := make(chan error, 1)
	go func() {
		shutdownErrChan <- s.app.ShutdownWithTimeout(30 * time.Second)
	}()

	select {
	case err := <-shutdownErrChan:
		if err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		fiberlog.Info("Server shutdown completed successfully")
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown timeout exceeded")
	}

	return nil
}

// createLimiter picks the counter store: Redis when configured, otherwise
// file-backed counters under the cache dir so limits survive restarts.
func (s *Server) createLimiter() ratelimit.Limiter {
	limit := s.config.RateLimit.Limit
	window := s.config.RateLimitWindow()

	if s.redis != nil {
		fiberlog.Info("Rate limiter using Redis counters")
		return ratelimit.NewRedisLimiter(s.redis, limit, window)
	}

	fiberlog.Infof("Rate limiter using file counters under %s", s.config.Storage.CacheDir)
	return ratelimit.NewFileLimiter(s.config.Storage.CacheDir, limit, window)
}

func createFiberApp(cfg *config.Config) *fiber.App {
	isProd := cfg.IsProduction()

	return fiber.New(fiber.Config{
		AppName:           "OpenAI Gateway v1.0",
		EnablePrintRoutes: !isProd,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		BodyLimit:         32 * 1024 * 1024,
		CaseSensitive:     true,
		ServerHeader:      "OpenAI-Gateway",
		ErrorHandler:      errorHandler,
	})
}

// errorHandler renders every error fiber itself raises (unmatched routes,
// body limit, panics surfaced by recover) in the standard envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	if _, ok := models.AsGatewayError(err); ok {
		return response.FromError(c, err)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return response.Error(c, fiber.StatusNotFound, "Endpoint not found", models.ErrCodeNotFound)
		case fiber.StatusMethodNotAllowed:
			return response.Error(c, fiber.StatusMethodNotAllowed, "Method not allowed", models.ErrCodeMethodNotAllowed)
		default:
			return response.Error(c, fe.Code, fe.Message, models.ErrCodeInternal)
		}
	}

	fiberlog.Errorf("Unhandled error: %v", err)
	return response.FromError(c, models.NewInternalError(err))
}

func setupMiddleware(app *fiber.App, cfg *config.Config, limiter ratelimit.Limiter) {
	isProd := cfg.IsProduction()

	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	app.Use(middleware.RequestID())

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
		Output: os.Stdout,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		MaxAge:        86400,
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID, Retry-After",
	}))

	app.Use(middleware.Metrics())
	app.Use(middleware.RateLimit(limiter))
}

func setupRoutes(app *fiber.App, settings *config.Settings, redisClient *redis.Client, client *gateway.Client) {
	generationSvc := generation.NewService(client, settings)
	upstreamSvc := upstream.NewService(client)

	api.RegisterRoutes(app, api.Handlers{
		Generate: api.NewGenerateHandler(generationSvc),
		Upstream: api.NewUpstreamHandler(upstreamSvc),
		Settings: api.NewSettingsHandler(settings, client),
		Health:   api.NewHealthHandler(settings, redisClient),
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func setupLogLevel(cfg *config.Config) {
	logLevel := cfg.GetNormalizedLogLevel()

	switch logLevel {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info", "":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
		fiberlog.Warnf("Unknown log level '%s', defaulting to 'info'", logLevel)
	}
}

func createRedisClient(cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.URL == "" {
		fiberlog.Info("Redis not configured - using file-backed rate limit counters")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.DialTimeout = 10 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.MaxRetries = 3

	client := redis.NewClient(opt)
	return testRedisConnectionWithRetry(client)
}

func testRedisConnectionWithRetry(client *redis.Client) (*redis.Client, error) {
	const maxAttempts = 3
	const baseDelay = 1 * time.Second

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()

		if err == nil {
			fiberlog.Infof("Redis connection established successfully (attempt %d/%d)", attempt, maxAttempts)
			return client, nil
		}

		fiberlog.Warnf("Redis connection failed (attempt %d/%d): %v", attempt, maxAttempts, err)

		if attempt < maxAttempts {
			delay := time.Duration(attempt) * baseDelay
			fiberlog.Infof("Retrying Redis connection in %v...", delay)
			time.Sleep(delay)
		}
	}

	if err := client.Close(); err != nil {
		fiberlog.Errorf("Failed to close Redis client after connection failures: %v", err)
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts", maxAttempts)
}
