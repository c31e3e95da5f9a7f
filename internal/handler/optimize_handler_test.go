package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiva/crewrouter/internal/engine"
	"github.com/shiva/crewrouter/internal/model"
	"github.com/shiva/crewrouter/pkg/distancecache"
)

type stubStore struct {
	tickets []model.Ticket
}

func (s *stubStore) ListOpenTickets(ctx context.Context, crew model.CrewType) ([]model.Ticket, error) {
	return s.tickets, nil
}

func (s *stubStore) SaveRoute(ctx context.Context, route model.Route) (string, error) {
	return "route-1", nil
}

func newTestHandler(tickets []model.Ticket) *OptimizeHandler {
	oracle := distancecache.NewOracle(nil, 30, nil)
	e := engine.New(&stubStore{tickets: tickets}, oracle, nil, 3)
	return NewOptimizeHandler(e, nil, 8.0, 50, model.StrategyMixed)
}

func TestOptimizeHandler_MalformedBodyIsBadRequest(t *testing.T) {
	h := newTestHandler(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	h.Optimize(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeHandler_MissingCrewTypeIsBadRequest(t *testing.T) {
	h := newTestHandler(nil)
	body, _ := json.Marshal(map[string]string{"date": "2026-07-30"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	h.Optimize(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeHandler_NoCandidatesReturns200(t *testing.T) {
	h := newTestHandler(nil)
	body, _ := json.Marshal(map[string]string{"crew_type": "general", "date": "2026-07-30"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	h.Optimize(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var route model.Route
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &route))
	assert.Equal(t, model.ExitNoCandidates, route.ExitCode)
}

func TestOptimizeHandler_ValidRequestRoutesTickets(t *testing.T) {
	tickets := []model.Ticket{
		{ID: "a", Location: model.Location{Lat: 0, Lon: 0}, CrewType: model.CrewGeneral, Priority: model.PriorityHigh, EstimatedServiceMinutes: 10},
		{ID: "b", Location: model.Location{Lat: 0, Lon: 0.01}, CrewType: model.CrewGeneral, Priority: model.PriorityLow, EstimatedServiceMinutes: 10},
	}
	h := newTestHandler(tickets)
	body, _ := json.Marshal(map[string]any{"crew_type": "general", "date": "2026-07-30"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	h.Optimize(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var route model.Route
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &route))
	assert.Len(t, route.Stops, 2)
}
