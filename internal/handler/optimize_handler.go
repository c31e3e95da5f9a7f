package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shiva/crewrouter/internal/engine"
	"github.com/shiva/crewrouter/internal/model"
)

// OptimizeHandler exposes the Engine Facade over HTTP.
type OptimizeHandler struct {
	engine *engine.Engine
	logger *zap.Logger
	defaultMaxHours float64
	defaultMaxPoints int
	defaultStrategy model.Strategy
}

// NewOptimizeHandler creates a handler wired to the given engine. Zero
// defaultMaxHours/defaultMaxPoints/defaultStrategy fall back to the same
// defaults config.Load sets (8 hours, 50 points, mixed).
func NewOptimizeHandler(e *engine.Engine, logger *zap.Logger, defaultMaxHours float64, defaultMaxPoints int, defaultStrategy model.Strategy) *OptimizeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultMaxHours <= 0 {
		defaultMaxHours = 8.0
	}
	if defaultMaxPoints <= 0 {
		defaultMaxPoints = 50
	}
	if defaultStrategy == "" {
		defaultStrategy = model.StrategyMixed
	}
	return &OptimizeHandler{
		engine: e,
		logger: logger,
		defaultMaxHours: defaultMaxHours,
		defaultMaxPoints: defaultMaxPoints,
		defaultStrategy: defaultStrategy,
	}
}

type optimizeRequestBody struct {
	CrewType string `json:"crew_type"`
	Date string `json:"date"`
	MaxHours *float64 `json:"max_hours,omitempty"`
	MaxPoints *int `json:"max_points,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	DeadlineMS int `json:"deadline_ms,omitempty"`
}

// Optimize handles POST /api/v1/optimize.
//
// Response codes:
//
//	200 — ok / partial / no_candidates (all are valid, successful outcomes)
//	400 — invalid_request or malformed body
//	500 — unexpected error
//	504 — deadline expired during stitching
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var body optimizeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid_body",
			"message": "request body must be valid JSON",
		})
		return
	}
	if body.CrewType == "" || body.Date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid_request",
			"message": "crew_type and date are required",
		})
		return
	}

	req := model.OptimizeRequest{
		CrewType: model.CrewType(body.CrewType),
		Date: body.Date,
		MaxHours: h.defaultMaxHours,
		MaxPoints: h.defaultMaxPoints,
		Strategy: h.defaultStrategy,
		DeadlineMS: body.DeadlineMS,
	}
	if body.MaxHours != nil {
		req.MaxHours = *body.MaxHours
	}
	if body.MaxPoints != nil {
		req.MaxPoints = *body.MaxPoints
	}
	if body.Strategy != "" {
		req.Strategy = model.Strategy(body.Strategy)
	}

	route, err := h.engine.Optimize(r.Context(), req)
	if err != nil {
		if errors.Is(err, engine.ErrStitchAborted) {
			writeJSON(w, http.StatusGatewayTimeout, map[string]string{
				"error": "deadline_exceeded",
				"message": "the run was aborted mid-stitch by its deadline",
			})
			return
		}
		h.logger.Error("optimize handler: engine error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	status := http.StatusOK
	if route.ExitCode == model.ExitInvalidRequest {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, route)
}
