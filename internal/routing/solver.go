// Package routing implements the Intra-cluster Solver (component E) and the
// Inter-cluster Stitcher (component F).
package routing

import (
	"context"

	"github.com/shiva/crewrouter/internal/model"
	"github.com/shiva/crewrouter/pkg/distancecache"
)

// Epsilon is the 2-opt improvement threshold: an exchange is only
// applied if it shortens the tour by more than this, to avoid churning on
// floating-point noise.
const Epsilon = 1e-6

// MaxTwoOptPasses caps 2-opt at 50 full passes over the tour.
const MaxTwoOptPasses = 50

// SeedMode chooses how SolveCluster picks the first ticket of a tour.
type SeedMode int

const (
	// SeedByUrgency seeds with the highest-urgency ticket (default, and
	// the "mixed"/"urgency_first" strategies).
	SeedByUrgency SeedMode = iota
	// SeedByCentroidProximity seeds with the ticket closest to the
	// cluster centroid (the "geographic" strategy).
	SeedByCentroidProximity
)

// Tour is an ordered visit sequence over a subset of tickets. Entry is the
// first id, exit the last — both consumed by the Stitcher.
type Tour struct {
	TicketIDs []string
}

func (t Tour) Entry() string {
	if len(t.TicketIDs) == 0 {
		return ""
	}
	return t.TicketIDs[0]
}

func (t Tour) Exit() string {
	if len(t.TicketIDs) == 0 {
		return ""
	}
	return t.TicketIDs[len(t.TicketIDs)-1]
}

// SolveCluster builds a nearest-neighbor tour over a cluster's tickets,
// seeded per mode, then refines it with 2-opt. tickets must contain
// an entry for every id in cluster.TicketIDs.
func SolveCluster(
	ctx context.Context,
	cluster model.Cluster,
	tickets map[string]model.Ticket,
	oracle *distancecache.Oracle,
	seed SeedMode,
) (Tour, error) {
	ids := cluster.TicketIDs
	if len(ids) == 0 {
		return Tour{}, nil
	}
	if len(ids) == 1 {
		return Tour{TicketIDs: []string{ids[0]}}, nil
	}

	seedID, err := pickSeed(ids, tickets, cluster.Centroid, seed)
	if err != nil {
		return Tour{}, err
	}

	order, err := nearestNeighborTour(ctx, seedID, ids, tickets, oracle)
	if err != nil {
		return Tour{}, err
	}

	order, err = twoOpt(ctx, order, tickets, oracle)
	if err != nil {
		return Tour{}, err
	}

	return Tour{TicketIDs: order}, nil
}

func pickSeed(ids []string, tickets map[string]model.Ticket, centroid model.Location, seed SeedMode) (string, error) {
	switch seed {
	case SeedByCentroidProximity:
		best := ids[0]
		bestDist := distToPoint(tickets[best].Location, centroid)
		for _, id := range ids[1:] {
			if d := distToPoint(tickets[id].Location, centroid); d < bestDist {
				bestDist = d
				best = id
			}
		}
		return best, nil
	default: // SeedByUrgency
		best := ids[0]
		for _, id := range ids[1:] {
			if tickets[id].UrgencyScore > tickets[best].UrgencyScore {
				best = id
			}
		}
		return best, nil
	}
}

// distToPoint is a flat-earth approximation used only to rank candidates
// for seed selection, not for tour-cost accounting (which always goes
// through the Oracle).
func distToPoint(a, b model.Location) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return dLat*dLat + dLon*dLon
}

// nearestNeighborTour repeatedly appends the unvisited ticket with the
// smallest travel time from the current tail.
func nearestNeighborTour(
	ctx context.Context,
	seedID string,
	ids []string,
	tickets map[string]model.Ticket,
	oracle *distancecache.Oracle,
) ([]string, error) {
	visited := make(map[string]bool, len(ids))
	order := make([]string, 0, len(ids))

	order = append(order, seedID)
	visited[seedID] = true

	for len(order) < len(ids) {
		tail := tickets[order[len(order)-1]]
		bestID := ""
		bestMinutes := -1.0

		for _, id := range ids {
			if visited[id] {
				continue
			}
			_, minutes, err := oracle.Distance(ctx, tail, tickets[id])
			if err != nil {
				return nil, err
			}
			if bestMinutes < 0 || minutes < bestMinutes {
				bestMinutes = minutes
				bestID = id
			}
		}

		order = append(order, bestID)
		visited[bestID] = true
	}

	return order, nil
}

// twoOpt reverses non-adjacent segments while doing so shortens the tour
// by more than Epsilon, capped at MaxTwoOptPasses full passes. The
// segment-reversal loop is the same shape used for pooled-ride route
// refinement elsewhere, re-targeted here to travel minutes between
// tickets instead of route-duration seconds between stops.
func twoOpt(
	ctx context.Context,
	order []string,
	tickets map[string]model.Ticket,
	oracle *distancecache.Oracle,
) ([]string, error) {
	if len(order) < 4 {
		return order, nil
	}

	minutesBetween := func(aID, bID string) (float64, error) {
		_, m, err := oracle.Distance(ctx, tickets[aID], tickets[bID])
		return m, err
	}

	for pass := 0; pass < MaxTwoOptPasses; pass++ {
		select {
		case <-ctx.Done():
			return order, ctx.Err()
		default:
		}

		improved := false

		for i := 0; i < len(order)-1; i++ {
			for j := i + 2; j < len(order)-1; j++ {
				dIi1, err := minutesBetween(order[i], order[i+1])
				if err != nil {
					return nil, err
				}
				dJj1, err := minutesBetween(order[j], order[j+1])
				if err != nil {
					return nil, err
				}
				dIj, err := minutesBetween(order[i], order[j])
				if err != nil {
					return nil, err
				}
				dI1j1, err := minutesBetween(order[i+1], order[j+1])
				if err != nil {
					return nil, err
				}

				if dIj+dI1j1 < dIi1+dJj1-Epsilon {
					reverse(order, i+1, j)
					improved = true
				}
			}
		}

		if !improved {
			break
		}
	}

	return order, nil
}

func reverse(s []string, i, j int) {
	for i < j {
		s[i], s[j] = s[j], s[i]
		i++
		j--
	}
}
