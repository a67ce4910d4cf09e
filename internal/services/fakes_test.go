package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bobby-s-dev/trip-planner/internal/models"
	"github.com/bobby-s-dev/trip-planner/pkg/client"
)

type fakeGeocoder struct {
	mu     sync.Mutex
	coords map[string]models.Coordinates
	err    error
	calls  int
}

func (f *fakeGeocoder) Geocode(_ context.Context, city string) (models.Coordinates, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return models.Coordinates{}, f.err
	}
	c, ok := f.coords[strings.ToLower(city)]
	if !ok {
		return models.Coordinates{}, fmt.Errorf("%w: %s", client.ErrNotFound, city)
	}
	return c, nil
}

type fakeForecaster struct {
	days     []client.DailyForecast
	err      error
	gotDays  int
	gotCoord models.Coordinates
}

func (f *fakeForecaster) GetDailyForecast(_ context.Context, coords models.Coordinates, days int) ([]client.DailyForecast, error) {
	f.gotDays = days
	f.gotCoord = coords
	if f.err != nil {
		return nil, f.err
	}
	if len(f.days) < days {
		return nil, fmt.Errorf("malformed forecast response")
	}
	return f.days[:days], nil
}

// fakeOverpass answers by matching the first tag value of each category in
// the query text.
type fakeOverpass struct {
	byMarker map[string][]client.OverpassElement
	err      map[string]error
	queries  []string
}

func (f *fakeOverpass) Query(_ context.Context, query string) ([]client.OverpassElement, error) {
	f.queries = append(f.queries, query)
	for marker, err := range f.err {
		if strings.Contains(query, marker) {
			return nil, err
		}
	}
	for marker, elements := range f.byMarker {
		if strings.Contains(query, marker) {
			return elements, nil
		}
	}
	return nil, nil
}

func ptr(v float64) *float64 { return &v }

func node(id int64, name string, lat, lon float64) client.OverpassElement {
	tags := map[string]string{}
	if name != "" {
		tags["name"] = name
	}
	return client.OverpassElement{Type: "node", ID: id, Lat: ptr(lat), Lon: ptr(lon), Tags: tags}
}

func way(id int64, name string, lat, lon float64) client.OverpassElement {
	return client.OverpassElement{
		Type:   "way",
		ID:     id,
		Center: &client.OverpassCenter{Lat: lat, Lon: lon},
		Tags:   map[string]string{"name": name},
	}
}

func namedPlaces(n int) []models.Place {
	places := make([]models.Place, n)
	for i := range places {
		places[i] = models.Place{Name: fmt.Sprintf("place-%d", i), Latitude: float64(i)}
	}
	return places
}
