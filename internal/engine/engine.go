// Package engine implements the Engine Facade (component H): the single
// entry point that runs scoring, clustering, intra-cluster solving,
// stitching, and feasibility validation for one crew's shift.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/shiva/crewrouter/internal/model"
	"github.com/shiva/crewrouter/internal/routing"
	"github.com/shiva/crewrouter/internal/scoring"
	"github.com/shiva/crewrouter/internal/validation"
	"github.com/shiva/crewrouter/pkg/distancecache"
	"github.com/shiva/crewrouter/pkg/workerpool"
)

// ─── Errors ─────────────────────────────────────────────────

var (
	ErrInvalidCrewType = errors.New("engine: invalid crew type")
	ErrInvalidBudget = errors.New("engine: non-positive budget")
	ErrStitchAborted = errors.New("engine: deadline exceeded during stitching")
)

var validCrewTypes = map[model.CrewType]bool{
	model.CrewAsphalt: true,
	model.CrewHydraulic: true,
	model.CrewElectric: true,
	model.CrewSanitation: true,
	model.CrewGeneral: true,
}

// ─── Collaborators ──────────────────────────────────────────

// TicketStore is the ticket persistence collaborator the facade depends on.
type TicketStore interface {
	ListOpenTickets(ctx context.Context, crew model.CrewType) ([]model.Ticket, error)
	SaveRoute(ctx context.Context, route model.Route) (string, error)
}

// ─── Engine ─────────────────────────────────────────────────

// Engine is the Engine Facade. It is stateless between calls — every
// Optimize call owns its own run-local state.
type Engine struct {
	tickets TicketStore
	oracle *distancecache.Oracle
	logger *zap.Logger

	ticketsBreaker *gobreaker.CircuitBreaker
	strategies map[model.Strategy]strategyFunc

	storeWarnOnce sync.Once
}

// New wires a facade around its ticket store and distance oracle. The
// ticket store is wrapped in a circuit breaker; the oracle handles its own
// store failures by computing distances directly. failureThreshold is the number of consecutive
// ticket-store failures that trips the breaker; 0 falls back to 3.
func New(tickets TicketStore, oracle *distancecache.Oracle, logger *zap.Logger, failureThreshold uint32) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := failureThreshold
	if threshold == 0 {
		threshold = 3
	}

	e := &Engine{
		tickets: tickets,
		oracle: oracle,
		logger: logger,
		ticketsBreaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "ticket-store",
			MaxRequests: 1,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
		}),
	}
	e.strategies = map[model.Strategy]strategyFunc{
		model.StrategyUrgencyFirst: strategyUrgencyFirst,
		model.StrategyGeographic: strategyGeographic,
		model.StrategyMixed: strategyMixed,
	}
	return e
}

// Optimize runs the full pipeline for one crew/date and returns the
// resulting Route. A non-nil error is only returned for conditions the
// caller must itself surface; every other outcome — including an empty
// candidate set or a partial result — is reported via route.ExitCode.
func (e *Engine) Optimize(ctx context.Context, req model.OptimizeRequest) (model.Route, error) {
	route := model.Route{CrewType: req.CrewType, Date: req.Date}

	if !validCrewTypes[req.CrewType] || req.MaxHours <= 0 {
		route.ExitCode = model.ExitInvalidRequest
		return route, nil
	}

	if req.DeadlineMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, time.Now().Add(time.Duration(req.DeadlineMS)*time.Millisecond))
		defer cancel()
	}

	tickets, err := e.listOpenTickets(ctx, req.CrewType)
	if err != nil {
		return model.Route{CrewType: req.CrewType, Date: req.Date, ExitCode: model.ExitInvalidRequest}, nil
	}
	if len(tickets) == 0 {
		route.ExitCode = model.ExitNoCandidates
		return route, nil
	}

	scoring.ScoreAll(tickets)
	sorted := scoring.Prioritize(tickets)

	byID := make(map[string]model.Ticket, len(sorted))
	for _, t := range sorted {
		byID[t.ID] = t
	}

	strategy, ok := e.strategies[req.Strategy]
	if !ok {
		strategy = strategyMixed
	}
	clusters, seedMode := strategy(sorted)

	clusterTours, partial := e.solveClusters(ctx, clusters, byID, seedMode)

	var stitched []string
	if len(clusterTours) > 0 {
		// A deadline that already expired while clusters were being solved
		// is recorded as partial; those tours are stitched without it so the
		// run still returns them. A deadline that expires during stitching
		// aborts the run.
		stitchCtx := ctx
		if partial && ctx.Err() != nil {
			stitchCtx = context.WithoutCancel(ctx)
		}
		order, err := routing.Stitch(stitchCtx, clusterTours, byID, e.oracle)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return model.Route{}, fmt.Errorf("%w: %v", ErrStitchAborted, err)
			}
			return model.Route{}, fmt.Errorf("engine: stitch: %w", err)
		}
		stitched = order
	}

	maxMinutes := req.MaxHours * 60
	result, err := validation.Validate(ctx, stitched, byID, e.oracle, maxMinutes, req.MaxPoints)
	if err != nil {
		partial = true
		result = validation.Result{}
	}

	route.Stops = result.Stops
	route.Dropped = result.Dropped
	route.Reordered = result.Reordered
	route.TotalDistanceKm = result.TotalDistanceKm
	route.TotalTimeMinutes = result.TotalTimeMinutes
	route.Stats = buildStats(clusterTours, result, byID)

	route.ExitCode = model.ExitOK
	if partial {
		route.ExitCode = model.ExitPartial
	}

	if _, err := e.saveRoute(ctx, route); err != nil {
		e.storeWarnOnce.Do(func() {
			e.logger.Warn("engine: save_route failed; returning computed route anyway", zap.Error(err))
		})
	}

	return route, nil
}

func (e *Engine) listOpenTickets(ctx context.Context, crew model.CrewType) ([]model.Ticket, error) {
	result, err := e.ticketsBreaker.Execute(func() (interface{}, error) {
		return e.tickets.ListOpenTickets(ctx, crew)
	})
	if err != nil {
		return nil, fmt.Errorf("engine: list open tickets: %w", err)
	}
	return result.([]model.Ticket), nil
}

func (e *Engine) saveRoute(ctx context.Context, route model.Route) (string, error) {
	result, err := e.ticketsBreaker.Execute(func() (interface{}, error) {
		return e.tickets.SaveRoute(ctx, route)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// solveClusters runs the Intra-cluster Solver across clusters in a bounded
// worker pool. A cluster whose worker fails or hits the deadline
// degrades to its original (unrefined) ticket order as a singleton tour
// rather than failing the whole run.
func (e *Engine) solveClusters(
	ctx context.Context,
	clusters []model.Cluster,
	tickets map[string]model.Ticket,
	seed routing.SeedMode,
) ([]routing.ClusterTour, bool) {
	results := workerpool.Run(ctx, clusters, func(wctx context.Context, cluster model.Cluster) (routing.ClusterTour, error) {
		tour, err := routing.SolveCluster(wctx, cluster, tickets, e.oracle, seed)
		if err != nil {
			return routing.ClusterTour{Cluster: cluster, Tour: routing.Tour{TicketIDs: cluster.TicketIDs}}, err
		}
		return routing.ClusterTour{Cluster: cluster, Tour: tour}, nil
	})

	tours := make([]routing.ClusterTour, 0, len(results))
	partial := false
	for _, r := range results {
		if r.Err != nil {
			partial = true
		}
		tours = append(tours, r.Value)
	}
	return tours, partial
}

func buildStats(clusterTours []routing.ClusterTour, result validation.Result, tickets map[string]model.Ticket) model.RouteStats {
	stats := model.RouteStats{ClustersServed: len(clusterTours)}
	for _, s := range result.Stops {
		if tickets[s.TicketID].Priority == model.PriorityEmergency {
			stats.EmergenciesCovered++
		}
	}
	for _, d := range result.Dropped {
		if d.Reason == model.DropBudget {
			stats.SkippedDueToBudgetCount++
		}
	}
	return stats
}
