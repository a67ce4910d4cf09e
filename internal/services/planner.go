package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bobby-s-dev/trip-planner/internal/metrics"
	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/bobby-s-dev/trip-planner/pkg/client"
	"go.uber.org/zap"
)

var (
	ErrEmptyCity     = errors.New("city is required")
	ErrInvalidDays   = errors.New("invalid number of days")
	ErrNoAttractions = errors.New("no attractions found")
)

type Geocoder interface {
	Geocode(ctx context.Context, city string) (models.Coordinates, error)
}

type Forecaster interface {
	GetDailyForecast(ctx context.Context, coords models.Coordinates, days int) ([]client.DailyForecast, error)
}

type PlaceQuerier interface {
	Query(ctx context.Context, query string) ([]client.OverpassElement, error)
}

type Limits struct {
	MaxDays        int
	MaxAttractions int
	MaxRestaurants int
	MaxHotels      int
}

// Planner runs every step of a trip plan in sequence. Upstream failures are
// logged and recorded in TripPlan.Warnings, and the failed step contributes
// an empty result.
type Planner struct {
	places  *PlacesService
	weather *WeatherService
	cache   *GeocodeCache
	limits  Limits
	logger  *zap.Logger

	mu           sync.RWMutex
	lastPlanTime time.Time
	successCount int
	failureCount int
	degraded     int
}

func NewPlanner(places *PlacesService, weather *WeatherService, cache *GeocodeCache, limits Limits, logger *zap.Logger) *Planner {
	return &Planner{
		places:  places,
		weather: weather,
		cache:   cache,
		limits:  limits,
		logger:  logger,
	}
}

func (p *Planner) Plan(ctx context.Context, req models.TripRequest) (*models.TripPlan, error) {
	city := strings.TrimSpace(req.City)
	if city == "" {
		p.record("empty_city")
		return nil, ErrEmptyCity
	}
	if req.Days < 1 || (p.limits.MaxDays > 0 && req.Days > p.limits.MaxDays) {
		p.record("invalid_days")
		return nil, fmt.Errorf("%w: %d", ErrInvalidDays, req.Days)
	}

	startTime := time.Now()
	plan := &models.TripPlan{City: city, Days: req.Days}

	attractions := p.fetchPlaces(ctx, plan, city, models.CategoryAttraction, p.limits.MaxAttractions)
	plan.Restaurants = p.fetchPlaces(ctx, plan, city, models.CategoryRestaurant, p.limits.MaxRestaurants)
	plan.Hotels = p.fetchPlaces(ctx, plan, city, models.CategoryHotel, p.limits.MaxHotels)

	// Empty results after a cancelled context say nothing about the city
	if err := ctx.Err(); err != nil {
		p.record("cancelled")
		return nil, fmt.Errorf("planning trip to %s: %w", city, err)
	}

	if len(attractions) == 0 {
		p.record("no_attractions")
		p.logger.Info("No attractions found",
			zap.String("city", city),
			zap.Strings("warnings", plan.Warnings))
		return nil, fmt.Errorf("%w for %s", ErrNoAttractions, city)
	}

	itinerary, err := BuildItinerary(attractions, req.Days)
	if err != nil {
		p.record("invalid_days")
		return nil, err
	}
	plan.Itinerary = itinerary

	forecast, err := p.weather.Forecast(ctx, city, req.Days)
	if err != nil {
		p.degrade(plan, "weather", city, err)
		forecast = []models.DayForecast{}
	}
	plan.Forecast = forecast

	plan.Transport = SuggestTransport(city)

	p.record("success")
	p.logger.Info("Trip planned",
		zap.String("city", city),
		zap.Int("days", req.Days),
		zap.Int("attractions", len(attractions)),
		zap.Int("buckets", len(plan.Itinerary)),
		zap.Int("forecast_days", len(plan.Forecast)),
		zap.Strings("warnings", plan.Warnings),
		zap.Duration("duration", time.Since(startTime)))

	return plan, nil
}

func (p *Planner) fetchPlaces(ctx context.Context, plan *models.TripPlan, city string, category models.Category, maxResults int) []models.Place {
	places, err := p.places.FetchPlaces(ctx, city, category, maxResults)
	if err != nil {
		p.degrade(plan, string(category), city, err)
		return []models.Place{}
	}
	return places
}

func (p *Planner) degrade(plan *models.TripPlan, component, city string, err error) {
	p.logger.Warn("Upstream step failed, continuing with empty result",
		zap.String("component", component),
		zap.String("city", city),
		zap.Error(err))
	metrics.DegradedComponents.WithLabelValues(component).Inc()
	plan.Warnings = append(plan.Warnings, component)

	p.mu.Lock()
	p.degraded++
	p.mu.Unlock()
}

func (p *Planner) record(outcome string) {
	metrics.Plans.WithLabelValues(outcome).Inc()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastPlanTime = time.Now()
	if outcome == "success" {
		p.successCount++
	} else {
		p.failureCount++
	}
}

func (p *Planner) GetLastPlanTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastPlanTime
}

func (p *Planner) GetStats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := map[string]interface{}{
		"last_plan_time":      p.lastPlanTime,
		"success_count":       p.successCount,
		"failure_count":       p.failureCount,
		"degraded_components": p.degraded,
	}
	if p.cache != nil {
		stats["cache_stats"] = p.cache.GetStats()
	}
	return stats
}
