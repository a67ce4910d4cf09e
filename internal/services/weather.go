package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/bobby-s-dev/trip-planner/pkg/client"
	"go.uber.org/zap"
)

const (
	rainThresholdMM = 2.0
	heatThresholdC  = 32.0
	coldThresholdC  = 15.0
)

// Classify picks the tip for one day. Rules are checked in order and the
// first match wins, so a hot and rainy day is a rain day.
func Classify(minTemp, maxTemp, precipitation float64) models.Tip {
	switch {
	case precipitation > rainThresholdMM:
		return models.TipRain
	case maxTemp > heatThresholdC:
		return models.TipHeat
	case minTemp < coldThresholdC:
		return models.TipCold
	default:
		return models.TipPleasant
	}
}

type WeatherService struct {
	geocoder   Geocoder
	forecaster Forecaster
	logger     *zap.Logger
	now        func() time.Time
}

func NewWeatherService(geocoder Geocoder, forecaster Forecaster, logger *zap.Logger) *WeatherService {
	return &WeatherService{
		geocoder:   geocoder,
		forecaster: forecaster,
		logger:     logger,
		now:        time.Now,
	}
}

// Forecast returns one classified day for today plus each of the next days.
func (s *WeatherService) Forecast(ctx context.Context, city string, days int) ([]models.DayForecast, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDays, days)
	}

	coords, err := s.geocoder.Geocode(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("weather for %s: %w", city, err)
	}

	total := days + 1
	raw, err := s.forecaster.GetDailyForecast(ctx, coords, total)
	if err != nil {
		return nil, fmt.Errorf("weather for %s: %w", city, err)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	forecast := make([]models.DayForecast, 0, total)
	for i, day := range raw {
		date, err := time.ParseInLocation(time.DateOnly, day.Date, now.Location())
		if err != nil {
			date = today.AddDate(0, 0, i)
		}

		forecast = append(forecast, models.DayForecast{
			Date:          date,
			MinTemp:       day.MinTemp,
			MaxTemp:       day.MaxTemp,
			Precipitation: day.Precipitation,
			Tip:           Classify(day.MinTemp, day.MaxTemp, day.Precipitation),
		})
	}

	s.logger.Debug("Forecast classified",
		zap.String("city", city),
		zap.Int("days", len(forecast)))

	return forecast, nil
}

var _ Forecaster = (*client.OpenMeteoClient)(nil)
