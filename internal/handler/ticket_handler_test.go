package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiva/crewrouter/internal/model"
)

type stubTicketStore struct {
	ticket model.Ticket
	err    error
}

func (s *stubTicketStore) GetTicket(ctx context.Context, id string) (model.Ticket, error) {
	return s.ticket, s.err
}

func TestTicketHandler_GetTicket_Found(t *testing.T) {
	store := &stubTicketStore{ticket: model.Ticket{ID: "a", CrewType: model.CrewGeneral}}
	h := NewTicketHandler(store, nil)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/tickets/{id}", h.GetTicket)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/a", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var ticket model.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))
	assert.Equal(t, "a", ticket.ID)
}

func TestTicketHandler_GetTicket_NotFound(t *testing.T) {
	store := &stubTicketStore{err: errors.New("no rows")}
	h := NewTicketHandler(store, nil)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/tickets/{id}", h.GetTicket)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
