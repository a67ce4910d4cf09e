package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/trip-planner/internal/api"
	"github.com/bobby-s-dev/trip-planner/internal/config"
	"github.com/bobby-s-dev/trip-planner/internal/scheduler"
	"github.com/bobby-s-dev/trip-planner/internal/services"
	"github.com/bobby-s-dev/trip-planner/pkg/client"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Initialize logger
	atom := zap.NewAtomicLevel()
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = atom
	logger, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Trip Planner Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if lvl, err := zapcore.ParseLevel(cfg.Server.LogLevel); err == nil {
		atom.SetLevel(lvl)
	} else {
		logger.Warn("Unknown log level, keeping info", zap.String("level", cfg.Server.LogLevel))
	}

	clientConfig := func(timeout time.Duration) client.ClientConfig {
		return client.ClientConfig{
			Timeout:        timeout,
			UserAgent:      cfg.Upstream.UserAgent,
			MaxRetries:     cfg.Retry.MaxRetries,
			RetryDelay:     cfg.Retry.Delay,
			Multiplier:     cfg.Retry.Multiplier,
			Threshold:      cfg.CircuitBreaker.Threshold,
			BreakerTimeout: cfg.CircuitBreaker.Timeout,
		}
	}

	// Upstream clients
	nominatim := client.NewNominatimClient(cfg.Upstream.NominatimURL, clientConfig(cfg.Upstream.NominatimTimeout), logger)
	openMeteo := client.NewOpenMeteoClient(cfg.Upstream.OpenMeteoURL, clientConfig(cfg.Upstream.OpenMeteoTimeout), logger)
	overpass := client.NewOverpassClient(cfg.Upstream.OverpassURL, clientConfig(cfg.Upstream.OverpassTimeout), logger)

	// Services
	geocodeCache := services.NewGeocodeCache(nominatim, cfg.Cache.Duration, cfg.Cache.CleanupInterval, logger)
	planner := services.NewPlanner(
		services.NewPlacesService(overpass, logger),
		services.NewWeatherService(geocodeCache, openMeteo, logger),
		geocodeCache,
		services.Limits{
			MaxDays:        cfg.Trip.MaxDays,
			MaxAttractions: cfg.Trip.MaxAttractions,
			MaxRestaurants: cfg.Trip.MaxRestaurants,
			MaxHotels:      cfg.Trip.MaxHotels,
		},
		logger,
	)

	// Initialize scheduler
	warmScheduler, err := scheduler.NewScheduler(
		geocodeCache,
		cfg.Scheduler.WarmCities,
		cfg.Scheduler.WarmSchedule,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to initialize scheduler", zap.Error(err))
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Views:        api.NewViewEngine(),
		ErrorHandler: api.NewErrorHandler(logger),
	})

	// Setup handlers and routes
	handler := api.NewHandler(planner, warmScheduler, geocodeCache, api.Settings{
		DefaultDays: cfg.Trip.DefaultDays,
		MaxDays:     cfg.Trip.MaxDays,
		PlanTimeout: cfg.Server.RequestTimeout,
	}, logger)
	api.SetupRoutes(app, handler, logger)

	warmScheduler.Start()

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	warmScheduler.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
