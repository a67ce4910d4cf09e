package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port           string
		ReadTimeout    time.Duration
		WriteTimeout   time.Duration
		RequestTimeout time.Duration
		LogLevel       string
	}

	Upstream struct {
		NominatimURL     string
		OpenMeteoURL     string
		OverpassURL      string
		UserAgent        string
		NominatimTimeout time.Duration
		OpenMeteoTimeout time.Duration
		OverpassTimeout  time.Duration
	}

	Trip struct {
		DefaultDays    int
		MaxDays        int
		MaxAttractions int
		MaxRestaurants int
		MaxHotels      int
	}

	Cache struct {
		Duration        time.Duration
		CleanupInterval time.Duration
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Retry struct {
		MaxRetries int
		Delay      time.Duration
		Multiplier float64
	}

	Scheduler struct {
		WarmSchedule string
		WarmCities   []string
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = envDuration("FIBER_READ_TIMEOUT", "10s")
	cfg.Server.WriteTimeout = envDuration("FIBER_WRITE_TIMEOUT", "120s")
	cfg.Server.RequestTimeout = envDuration("REQUEST_TIMEOUT", "150s")
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Upstream APIs (none of them need a key)
	cfg.Upstream.NominatimURL = getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	cfg.Upstream.OpenMeteoURL = getEnv("OPENMETEO_URL", "https://api.open-meteo.com/v1")
	cfg.Upstream.OverpassURL = getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter")
	cfg.Upstream.UserAgent = getEnv("UPSTREAM_USER_AGENT", "trip-planner/1.0")
	cfg.Upstream.NominatimTimeout = envDuration("NOMINATIM_TIMEOUT", "10s")
	cfg.Upstream.OpenMeteoTimeout = envDuration("OPENMETEO_TIMEOUT", "10s")
	cfg.Upstream.OverpassTimeout = envDuration("OVERPASS_TIMEOUT", "45s")

	cfg.Trip.DefaultDays = envInt("TRIP_DEFAULT_DAYS", "3")
	cfg.Trip.MaxDays = envInt("TRIP_MAX_DAYS", "15")
	cfg.Trip.MaxAttractions = envInt("MAX_ATTRACTIONS", "12")
	cfg.Trip.MaxRestaurants = envInt("MAX_RESTAURANTS", "6")
	cfg.Trip.MaxHotels = envInt("MAX_HOTELS", "6")

	cfg.Cache.Duration = envDuration("CACHE_DURATION", "24h")
	cfg.Cache.CleanupInterval = envDuration("CACHE_CLEANUP_INTERVAL", "10m")

	cfg.CircuitBreaker.Threshold = envInt("CIRCUIT_BREAKER_THRESHOLD", "3")
	cfg.CircuitBreaker.Timeout = envDuration("CIRCUIT_BREAKER_TIMEOUT", "30s")

	// Retries are off unless explicitly enabled
	cfg.Retry.MaxRetries = envInt("MAX_RETRIES", "0")
	cfg.Retry.Delay = envDuration("RETRY_DELAY", "1s")
	cfg.Retry.Multiplier = envFloat("RETRY_MULTIPLIER", "2")

	cfg.Scheduler.WarmSchedule = getEnv("WARM_SCHEDULE", "@every 6h")
	cfg.Scheduler.WarmCities = splitList(getEnv("WARM_CITIES", "Hyderabad,Chennai,Delhi,Bangalore,Mumbai,Ooty,Manali,Coorg,Shimla"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Trip.MaxDays < 1 {
		return fmt.Errorf("TRIP_MAX_DAYS must be at least 1, got %d", c.Trip.MaxDays)
	}
	if c.Trip.DefaultDays < 1 || c.Trip.DefaultDays > c.Trip.MaxDays {
		return fmt.Errorf("TRIP_DEFAULT_DAYS must be between 1 and %d, got %d", c.Trip.MaxDays, c.Trip.DefaultDays)
	}

	limits := []struct {
		name  string
		value int
	}{
		{"MAX_ATTRACTIONS", c.Trip.MaxAttractions},
		{"MAX_RESTAURANTS", c.Trip.MaxRestaurants},
		{"MAX_HOTELS", c.Trip.MaxHotels},
		{"CIRCUIT_BREAKER_THRESHOLD", c.CircuitBreaker.Threshold},
	}
	for _, l := range limits {
		if l.value < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", l.name, l.value)
		}
	}

	// A zero timeout means no timeout at all for http.Client
	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"NOMINATIM_TIMEOUT", c.Upstream.NominatimTimeout},
		{"OPENMETEO_TIMEOUT", c.Upstream.OpenMeteoTimeout},
		{"OVERPASS_TIMEOUT", c.Upstream.OverpassTimeout},
		{"REQUEST_TIMEOUT", c.Server.RequestTimeout},
		{"CIRCUIT_BREAKER_TIMEOUT", c.CircuitBreaker.Timeout},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", t.name, t.value)
		}
	}

	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative, got %d", c.Retry.MaxRetries)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// envDuration, envInt and envFloat fall back to the default when the
// variable is unset or does not parse.
func envDuration(key, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration, using default",
			zap.String("key", key),
			zap.String("value", value),
			zap.String("default", defaultValue),
			zap.Error(err))
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func envInt(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int, using default",
			zap.String("key", key),
			zap.String("value", value),
			zap.String("default", defaultValue),
			zap.Error(err))
		intValue, _ = strconv.Atoi(defaultValue)
	}
	return intValue
}

func envFloat(key, defaultValue string) float64 {
	value := getEnv(key, defaultValue)
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float, using default",
			zap.String("key", key),
			zap.String("value", value),
			zap.String("default", defaultValue),
			zap.Error(err))
		floatValue, _ = strconv.ParseFloat(defaultValue, 64)
	}
	return floatValue
}
