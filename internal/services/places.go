package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/bobby-s-dev/trip-planner/pkg/client"
	"go.uber.org/zap"
)

type tag struct {
	Key   string
	Value string
}

var categoryTags = map[models.Category][]tag{
	models.CategoryAttraction: {
		{"tourism", "attraction"},
		{"tourism", "museum"},
		{"leisure", "park"},
		{"historic", "monument"},
	},
	models.CategoryRestaurant: {
		{"amenity", "restaurant"},
		{"amenity", "cafe"},
		{"amenity", "fast_food"},
		{"amenity", "food_court"},
		{"amenity", "bar"},
	},
	models.CategoryHotel: {
		{"tourism", "hotel"},
		{"tourism", "guest_house"},
		{"amenity", "lodging"},
		{"tourism", "hostel"},
		{"building", "hotel"},
	},
}

var elementTypes = []string{"node", "way", "relation"}

var qlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// BuildPlacesQuery renders the Overpass QL query that finds every node, way
// and relation matching any of the category's tags inside the city's
// administrative area. The second result is false for an unknown category.
func BuildPlacesQuery(city string, category models.Category) (string, bool) {
	tags, ok := categoryTags[category]
	if !ok {
		return "", false
	}

	var b strings.Builder
	b.WriteString("[out:json][timeout:40];\n")
	fmt.Fprintf(&b, "area[\"name\"=\"%s\"][admin_level~\"6|7|8\"]->.searchArea;\n", qlEscaper.Replace(city))
	b.WriteString("(\n")
	for _, t := range tags {
		for _, el := range elementTypes {
			fmt.Fprintf(&b, "  %s[\"%s\"=\"%s\"](area.searchArea);\n", el, t.Key, t.Value)
		}
	}
	b.WriteString(");\n")
	b.WriteString("out center;\n")

	return b.String(), true
}

type PlacesService struct {
	overpass PlaceQuerier
	logger   *zap.Logger
}

func NewPlacesService(overpass PlaceQuerier, logger *zap.Logger) *PlacesService {
	return &PlacesService{
		overpass: overpass,
		logger:   logger,
	}
}

// FetchPlaces returns up to maxResults named places of one category. The raw
// element list is truncated before unnamed or unlocated elements are dropped,
// so fewer than maxResults places may come back. An unsupported category
// yields an empty result, not an error.
func (s *PlacesService) FetchPlaces(ctx context.Context, city string, category models.Category, maxResults int) ([]models.Place, error) {
	category, err := models.ParseCategory(string(category))
	if err != nil {
		s.logger.Warn("Unsupported place category",
			zap.String("city", city),
			zap.Error(err))
		return []models.Place{}, nil
	}
	query, _ := BuildPlacesQuery(city, category)
	if maxResults <= 0 {
		return []models.Place{}, nil
	}

	elements, err := s.overpass.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s places for %s: %w", category, city, err)
	}

	if len(elements) > maxResults {
		elements = elements[:maxResults]
	}

	places := make([]models.Place, 0, len(elements))
	seen := make(map[string]struct{}, len(elements))
	for _, el := range elements {
		name := strings.TrimSpace(el.Tags["name"])
		lat, lon, ok := el.Position()
		if name == "" || !ok {
			continue
		}

		key := fmt.Sprintf("%s|%.6f|%.6f", name, lat, lon)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		places = append(places, models.Place{
			Name:      name,
			Latitude:  lat,
			Longitude: lon,
			Address:   city,
			Category:  category,
			OSMType:   el.Type,
			OSMID:     el.ID,
		})
	}

	s.logger.Debug("Places fetched",
		zap.String("city", city),
		zap.String("category", string(category)),
		zap.Int("elements", len(elements)),
		zap.Int("places", len(places)))

	return places, nil
}

var _ PlaceQuerier = (*client.OverpassClient)(nil)
