package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/trip-planner/internal/models"
	"go.uber.org/zap"
)

type OpenMeteoClient struct {
	*BaseClient
	baseURL string
}

type OpenMeteoForecastResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Daily     struct {
		Time             []string  `json:"time"`
		Temperature2MMax []float64 `json:"temperature_2m_max"`
		Temperature2MMin []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// DailyForecast is one day of raw forecast values before classification.
type DailyForecast struct {
	Date          string
	MaxTemp       float64
	MinTemp       float64
	Precipitation float64
}

func NewOpenMeteoClient(baseURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	return &OpenMeteoClient{
		BaseClient: NewBaseClient("openmeteo", config, logger),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// GetDailyForecast returns exactly days entries starting today in the
// location's own timezone. A payload with fewer entries is rejected.
func (c *OpenMeteoClient) GetDailyForecast(ctx context.Context, coords models.Coordinates, days int) ([]DailyForecast, error) {
	if days < 1 {
		return nil, fmt.Errorf("forecast days must be positive, got %d", days)
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum")
	params.Set("forecast_days", strconv.Itoa(days))
	params.Set("timezone", "auto")

	data, err := c.Get(ctx, c.baseURL+"/forecast?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	var response OpenMeteoForecastResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}

	daily := response.Daily
	if len(daily.Temperature2MMax) < days || len(daily.Temperature2MMin) < days || len(daily.PrecipitationSum) < days {
		return nil, fmt.Errorf("malformed forecast response: want %d days, got max=%d min=%d precipitation=%d",
			days, len(daily.Temperature2MMax), len(daily.Temperature2MMin), len(daily.PrecipitationSum))
	}

	forecast := make([]DailyForecast, 0, days)
	for i := 0; i < days; i++ {
		day := DailyForecast{
			MaxTemp:       daily.Temperature2MMax[i],
			MinTemp:       daily.Temperature2MMin[i],
			Precipitation: daily.PrecipitationSum[i],
		}
		if i < len(daily.Time) {
			day.Date = daily.Time[i]
		}
		forecast = append(forecast, day)
	}

	return forecast, nil
}
