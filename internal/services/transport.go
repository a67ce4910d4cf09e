package services

import "strings"

const (
	transportMetro   = "🚇 Metro, 🚌 Bus, 🚗 Cab, 🚕 Auto available locally."
	transportHill    = "🚗 Local taxis and 🚶 walking recommended in hill areas."
	transportDefault = "🚌 City buses or 🚕 autos available in most cities."
)

var (
	metroCities = map[string]struct{}{
		"hyderabad": {}, "chennai": {}, "delhi": {}, "bangalore": {}, "mumbai": {},
	}
	hillStations = map[string]struct{}{
		"ooty": {}, "manali": {}, "coorg": {}, "shimla": {},
	}
)

func SuggestTransport(city string) string {
	key := strings.ToLower(strings.TrimSpace(city))
	if _, ok := metroCities[key]; ok {
		return transportMetro
	}
	if _, ok := hillStations[key]; ok {
		return transportHill
	}
	return transportDefault
}
