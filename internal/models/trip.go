package models

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryAttraction Category = "attraction"
	CategoryRestaurant Category = "restaurant"
	CategoryHotel      Category = "hotel"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryAttraction, CategoryRestaurant, CategoryHotel:
		return c, nil
	default:
		return "", fmt.Errorf("unsupported category: %q", s)
	}
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Place struct {
	Name      string   `json:"name"`
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lng"`
	Address   string   `json:"address"`
	Category  Category `json:"category"`
	OSMType   string   `json:"osm_type,omitempty"`
	OSMID     int64    `json:"osm_id,omitempty"`
}

// Tip is the single piece of advice attached to a forecast day.
type Tip string

const (
	TipRain     Tip = "rain"
	TipHeat     Tip = "heat"
	TipCold     Tip = "cold"
	TipPleasant Tip = "pleasant"
)

func (t Tip) Message() string {
	switch t {
	case TipRain:
		return "🌧️ Carry an umbrella!"
	case TipHeat:
		return "🥵 Stay hydrated and wear a hat."
	case TipCold:
		return "🧥 Carry a jacket for cool evenings."
	default:
		return "☀️ Great weather for exploring!"
	}
}

type DayForecast struct {
	Date          time.Time `json:"date"`
	MinTemp       float64   `json:"min_temp"`
	MaxTemp       float64   `json:"max_temp"`
	Precipitation float64   `json:"precipitation"`
	Tip           Tip       `json:"tip"`
}

// Itinerary holds one bucket of attractions per trip day, in visiting order.
type Itinerary [][]Place

type TripRequest struct {
	City string
	Days int
}

type TripPlan struct {
	City        string        `json:"city"`
	Days        int           `json:"days"`
	Itinerary   Itinerary     `json:"itinerary"`
	Restaurants []Place       `json:"restaurants"`
	Hotels      []Place       `json:"hotels"`
	Forecast    []DayForecast `json:"forecast"`
	Transport   string        `json:"transport"`
	Warnings    []string      `json:"warnings,omitempty"`
}
