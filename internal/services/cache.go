package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bobby-s-dev/trip-planner/internal/metrics"
	"github.com/bobby-s-dev/trip-planner/internal/models"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// GeocodeCache keeps successful geocoding lookups in memory. Nominatim's usage
// policy asks clients not to repeat identical queries, and city coordinates
// do not move. Failed lookups are never stored.
type GeocodeCache struct {
	geocoder Geocoder
	cache    *gocache.Cache
	logger   *zap.Logger
	ttl      time.Duration
	hits     atomic.Int64
	misses   atomic.Int64
}

func NewGeocodeCache(geocoder Geocoder, ttl, cleanupInterval time.Duration, logger *zap.Logger) *GeocodeCache {
	return &GeocodeCache{
		geocoder: geocoder,
		cache:    gocache.New(ttl, cleanupInterval),
		logger:   logger,
		ttl:      ttl,
	}
}

func cacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func (c *GeocodeCache) Geocode(ctx context.Context, city string) (models.Coordinates, error) {
	key := cacheKey(city)
	if cached, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		metrics.GeocodeCache.WithLabelValues("hit").Inc()
		c.logger.Debug("Cache hit for geocode", zap.String("city", city))
		return cached.(models.Coordinates), nil
	}

	c.misses.Add(1)
	metrics.GeocodeCache.WithLabelValues("miss").Inc()

	coords, err := c.geocoder.Geocode(ctx, city)
	if err != nil {
		return models.Coordinates{}, err
	}

	c.cache.Set(key, coords, gocache.DefaultExpiration)
	c.logger.Debug("Geocode cached",
		zap.String("city", city),
		zap.Time("expires_at", time.Now().Add(c.ttl)))

	return coords, nil
}

// Warm geocodes every city that is not cached yet, one at a time.
func (c *GeocodeCache) Warm(ctx context.Context, cities []string) error {
	var errs []error
	warmed := 0

	for _, city := range cities {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, ok := c.cache.Get(cacheKey(city)); ok {
			continue
		}

		coords, err := c.geocoder.Geocode(ctx, city)
		if err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", city, err))
			continue
		}
		c.cache.Set(cacheKey(city), coords, gocache.DefaultExpiration)
		warmed++
	}

	c.logger.Info("Geocode cache warmed",
		zap.Int("requested", len(cities)),
		zap.Int("warmed", warmed),
		zap.Int("failed", len(errs)))

	return errors.Join(errs...)
}

func (c *GeocodeCache) Flush() {
	c.cache.Flush()
}

func (c *GeocodeCache) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"geocode_items":    c.cache.ItemCount(),
		"geocode_hits":     c.hits.Load(),
		"geocode_misses":   c.misses.Load(),
		"default_duration": c.ttl.String(),
	}
}
