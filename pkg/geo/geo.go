// Package geo provides the pure geographic math behind the Distance Oracle.
//
// All distance calculations use the Haversine formula on WGS-84 coordinates.
// Travel time is estimated from a configurable average speed — this is a
// great-circle approximation, not a road-network router. The Oracle in
// pkg/distancecache computes every distance missing from its caches with
// these functions; it has no hook for a different distance function.
package geo

import (
	"math"

	"github.com/shiva/crewrouter/internal/model"
)

// ─── Constants ──────────────────────────────────────────────

const (
	// EarthRadiusKm is the mean radius of Earth in kilometers.
	EarthRadiusKm = 6371.0

	// DefaultAvgSpeedKmph is the assumed average crew travel speed used
	// when no routing-engine override is configured.
	DefaultAvgSpeedKmph = 30.0
)

// ─── Distance ───────────────────────────────────────────────

// HaversineKm returns the great-circle distance between two points in
// kilometers. Symmetric; HaversineKm(a, a) == 0.
//
// Complexity: O(1)
func HaversineKm(a, b model.Location) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLon*sinLon

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// TravelMinutes converts a distance in km to travel minutes at the given
// average speed in km/h.
func TravelMinutes(km, avgSpeedKmph float64) float64 {
	if avgSpeedKmph <= 0 {
		avgSpeedKmph = DefaultAvgSpeedKmph
	}
	return (km / avgSpeedKmph) * 60.0
}

// EstimateTimeMinutes returns the estimated direct travel time between two
// points in minutes, at avgSpeedKmph (DefaultAvgSpeedKmph if <= 0).
//
// Complexity: O(1)
func EstimateTimeMinutes(a, b model.Location, avgSpeedKmph float64) float64 {
	return TravelMinutes(HaversineKm(a, b), avgSpeedKmph)
}

// ─── Helpers ────────────────────────────────────────────────

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
