package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/trip-planner/internal/models"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the geocoder has no match for a city.
var ErrNotFound = errors.New("location not found")

type NominatimClient struct {
	*BaseClient
	baseURL string
}

type nominatimResult struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func NewNominatimClient(baseURL string, config ClientConfig, logger *zap.Logger) *NominatimClient {
	return &NominatimClient{
		BaseClient: NewBaseClient("nominatim", config, logger),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Geocode resolves a city name to the coordinates of the first search match.
func (c *NominatimClient) Geocode(ctx context.Context, city string) (models.Coordinates, error) {
	params := url.Values{}
	params.Set("city", city)
	params.Set("format", "json")
	params.Set("limit", "1")

	data, err := c.Get(ctx, c.baseURL+"/search?"+params.Encode())
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to geocode %q: %w", city, err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(data, &results); err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to parse geocode response: %w", err)
	}
	if len(results) == 0 {
		return models.Coordinates{}, fmt.Errorf("%w: %s", ErrNotFound, city)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}

	c.logger.Debug("Geocoded city",
		zap.String("city", city),
		zap.String("match", results[0].DisplayName),
		zap.Float64("lat", lat),
		zap.Float64("lon", lon))

	return models.Coordinates{Lat: lat, Lon: lon}, nil
}
