package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shiva/crewrouter/internal/model"
)

func TestHaversineKm_SamePoint(t *testing.T) {
	loc := model.Location{Lat: 28.7041, Lon: 77.1025}
	assert.Equal(t, 0.0, HaversineKm(loc, loc))
}

func TestHaversineKm_Symmetric(t *testing.T) {
	a := model.Location{Lat: 28.6315, Lon: 77.2167}
	b := model.Location{Lat: 28.5562, Lon: 77.0889}
	assert.InDelta(t, HaversineKm(a, b), HaversineKm(b, a), 1e-9)
}

// TestHaversineKm_KnownDistance pins the exact round-trip distance from
// the urgency-dominance scenario: haversine((0,0),(1,1)) * 2 ~= 314.47 km.
func TestHaversineKm_KnownDistance(t *testing.T) {
	a := model.Location{Lat: 0, Lon: 0}
	b := model.Location{Lat: 1, Lon: 1}
	oneWay := HaversineKm(a, b)
	assert.InDelta(t, 157.2, oneWay, 0.5)
	assert.InDelta(t, 314.47, oneWay*2, 1.0)
}

func TestEstimateTimeMinutes_DefaultSpeed(t *testing.T) {
	a := model.Location{Lat: 28.7041, Lon: 77.1025}
	b := model.Location{Lat: 28.5562, Lon: 77.0889}
	got := EstimateTimeMinutes(a, b, 0)
	assert.Greater(t, got, 0.0)
}

func TestTravelMinutes_NonPositiveSpeedFallsBackToDefault(t *testing.T) {
	got := TravelMinutes(30.0, 0)
	want := TravelMinutes(30.0, DefaultAvgSpeedKmph)
	assert.Equal(t, want, got)
}
