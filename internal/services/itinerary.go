package services

import (
	"fmt"

	"github.com/bobby-s-dev/trip-planner/internal/models"
)

// BuildItinerary splits places into contiguous day buckets of
// ceil(len(places)/days) items. When there are fewer places than days the
// result has fewer buckets than days.
func BuildItinerary(places []models.Place, days int) (models.Itinerary, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDays, days)
	}
	if len(places) == 0 {
		return models.Itinerary{}, nil
	}

	perDay := (len(places) + days - 1) / days
	itinerary := make(models.Itinerary, 0, (len(places)+perDay-1)/perDay)
	for start := 0; start < len(places); start += perDay {
		end := min(start+perDay, len(places))
		itinerary = append(itinerary, places[start:end:end])
	}

	return itinerary, nil
}
