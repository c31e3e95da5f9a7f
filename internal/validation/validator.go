// Package validation implements the Feasibility Validator (component G):
// dependency repair, a shift-budget forward walk, and an emergency
// safeguard pass, run once over the Stitcher's output sequence.
package validation

import (
	"context"

	"github.com/shiva/crewrouter/internal/model"
	"github.com/shiva/crewrouter/pkg/distancecache"
)

// DefaultMaxMinutes is the shift budget used when a request omits one.
const DefaultMaxMinutes = 480.0

// MaxEmergencySwaps caps the number of one-for-one emergency safeguard
// swaps performed per run.
const MaxEmergencySwaps = 10

// Result is the accepted subsequence plus the manifest of drops.
type Result struct {
	Stops []model.Stop
	Dropped []model.DroppedTicket
	// Reordered lists, in the order the dependency repair moved them, the
	// ids of tickets pushed later to satisfy a dependency rather than
	// dropped.
	Reordered []string
	TotalDistanceKm float64
	TotalTimeMinutes float64
}

// Validate repairs dependency ordering, walks the sequence forward against
// the shift budget, and applies the emergency safeguard, in that order.
// maxPoints <= 0 means no cap on stop count.
func Validate(
	ctx context.Context,
	order []string,
	tickets map[string]model.Ticket,
	oracle *distancecache.Oracle,
	maxMinutes float64,
	maxPoints int,
) (Result, error) {
	if maxMinutes <= 0 {
		maxMinutes = DefaultMaxMinutes
	}

	order, cycleDrops := BreakCycles(order, tickets)
	order, repairDrops, reordered := repairDependencies(order, tickets)

	accepted, budgetDropIDs, err := walkForward(ctx, order, tickets, oracle, maxMinutes, maxPoints)
	if err != nil {
		return Result{}, err
	}

	accepted, budgetDropIDs, err = applyEmergencySafeguard(ctx, accepted, budgetDropIDs, tickets, oracle, maxMinutes, maxPoints)
	if err != nil {
		return Result{}, err
	}

	stops, totalKm, totalMinutes, err := buildStops(ctx, accepted, tickets, oracle)
	if err != nil {
		return Result{}, err
	}

	dropped := make([]model.DroppedTicket, 0, len(cycleDrops)+len(repairDrops)+len(budgetDropIDs))
	dropped = append(dropped, cycleDrops...)
	dropped = append(dropped, repairDrops...)
	for _, id := range budgetDropIDs {
		dropped = append(dropped, model.DroppedTicket{TicketID: id, Reason: model.DropBudget})
	}

	return Result{
		Stops: stops,
		Dropped: dropped,
		Reordered: reordered,
		TotalDistanceKm: totalKm,
		TotalTimeMinutes: totalMinutes,
	}, nil
}

// repairDependencies moves each ticket to the earliest position after all
// of its present dependencies, repeating until the sequence is stable, and
// reports the ids moved this way (not dropped) in the order they were
// moved. A ticket depending on an id absent from the candidate set entirely
// cannot be repaired and is dropped with reason dependency_missing.
func repairDependencies(order []string, tickets map[string]model.Ticket) ([]string, []model.DroppedTicket, []string) {
	var dropped []model.DroppedTicket
	var reordered []string

	// Drop anything depending on a ticket outside the whole candidate set
	// up front — no reordering can satisfy that.
	all := make(map[string]bool, len(order))
	for _, id := range order {
		all[id] = true
	}
	filtered := make([]string, 0, len(order))
	for _, id := range order {
		missing := false
		for _, dep := range tickets[id].Dependencies {
			if !all[dep] {
				missing = true
				break
			}
		}
		if missing {
			dropped = append(dropped, model.DroppedTicket{TicketID: id, Reason: model.DropDependencyMissing})
			continue
		}
		filtered = append(filtered, id)
	}
	order = filtered

	maxPasses := len(order) + 4
	for pass := 0; pass < maxPasses; pass++ {
		position := indexOf(order)
		moved := false

		for i, id := range order {
			latestDepPos := -1
			for _, dep := range tickets[id].Dependencies {
				if pos, ok := position[dep]; ok && pos > latestDepPos {
					latestDepPos = pos
				}
			}
			if latestDepPos > i {
				order = moveAfter(order, i, latestDepPos)
				reordered = append(reordered, id)
				moved = true
				break
			}
		}

		if !moved {
			break
		}
	}

	return order, dropped, reordered
}

func indexOf(order []string) map[string]int {
	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}
	return position
}

// moveAfter removes the element at index from and reinserts it immediately
// after the element originally at index afterIdx (afterIdx > from).
func moveAfter(order []string, from, afterIdx int) []string {
	id := order[from]
	out := make([]string, 0, len(order))
	out = append(out, order[:from]...)
	out = append(out, order[from+1:afterIdx+1]...)
	out = append(out, id)
	out = append(out, order[afterIdx+1:]...)
	return out
}

// walkForward accumulates travel(prev,current) + service(current) and
// stops as soon as the next addition would exceed max_minutes or
// max_points; everything after that point is a budget drop.
func walkForward(
	ctx context.Context,
	order []string,
	tickets map[string]model.Ticket,
	oracle *distancecache.Oracle,
	maxMinutes float64,
	maxPoints int,
) ([]string, []string, error) {
	var accepted []string
	var cut int

	total := 0.0
	for i, id := range order {
		addition := float64(tickets[id].EstimatedServiceMinutes)
		if i > 0 {
			_, travel, err := oracle.Distance(ctx, tickets[order[i-1]], tickets[id])
			if err != nil {
				return nil, nil, err
			}
			addition += travel
		}

		if total+addition > maxMinutes {
			break
		}
		if maxPoints > 0 && len(accepted) >= maxPoints {
			break
		}

		total += addition
		accepted = append(accepted, id)
		cut = i + 1
	}

	return accepted, append([]string{}, order[cut:]...), nil
}

// applyEmergencySafeguard swaps a dropped emergency ticket in for the
// lowest-urgency accepted ticket, as long as nothing else depends on the
// outgoing ticket, the emergency ticket's dependencies are already
// satisfied at that position, and the swap keeps the tour within budget.
// At most MaxEmergencySwaps swaps are attempted.
func applyEmergencySafeguard(
	ctx context.Context,
	accepted []string,
	budgetDropped []string,
	tickets map[string]model.Ticket,
	oracle *distancecache.Oracle,
	maxMinutes float64,
	maxPoints int,
) ([]string, []string, error) {
	for swap := 0; swap < MaxEmergencySwaps; swap++ {
		emergencyIdx := -1
		for i, id := range budgetDropped {
			if tickets[id].Priority == model.PriorityEmergency {
				emergencyIdx = i
				break
			}
		}
		if emergencyIdx < 0 {
			break
		}
		emergencyID := budgetDropped[emergencyIdx]

		candidateIdx, err := pickSwapCandidate(accepted, emergencyID, tickets)
		if err != nil {
			return nil, nil, err
		}
		if candidateIdx < 0 {
			break
		}

		trial := append([]string{}, accepted...)
		outgoing := trial[candidateIdx]
		trial[candidateIdx] = emergencyID

		km, minutes, err := tourCost(ctx, trial, tickets, oracle)
		if err != nil {
			return nil, nil, err
		}
		if minutes > maxMinutes || (maxPoints > 0 && len(trial) > maxPoints) {
			break
		}
		_ = km

		accepted = trial
		budgetDropped[emergencyIdx] = outgoing
	}

	return accepted, budgetDropped, nil
}

// pickSwapCandidate finds the lowest-urgency accepted, non-emergency
// ticket that nothing else in accepted depends on, and whose replacement
// by emergencyID would not place emergencyID before one of its own
// dependencies.
func pickSwapCandidate(accepted []string, emergencyID string, tickets map[string]model.Ticket) (int, error) {
	position := indexOf(accepted)

	dependedOn := make(map[string]bool, len(accepted))
	for _, id := range accepted {
		for _, dep := range tickets[id].Dependencies {
			dependedOn[dep] = true
		}
	}

	best := -1
	for i, id := range accepted {
		if tickets[id].Priority == model.PriorityEmergency {
			continue
		}
		if dependedOn[id] {
			continue
		}

		satisfied := true
		for _, dep := range tickets[emergencyID].Dependencies {
			if pos, ok := position[dep]; !ok || pos >= i {
				satisfied = false
				break
			}
		}
		if !satisfied {
			continue
		}

		if best < 0 || tickets[id].UrgencyScore < tickets[accepted[best]].UrgencyScore {
			best = i
		}
	}

	return best, nil
}

func tourCost(ctx context.Context, order []string, tickets map[string]model.Ticket, oracle *distancecache.Oracle) (float64, float64, error) {
	totalKm, totalMinutes := 0.0, 0.0
	for i, id := range order {
		totalMinutes += float64(tickets[id].EstimatedServiceMinutes)
		if i > 0 {
			km, minutes, err := oracle.Distance(ctx, tickets[order[i-1]], tickets[id])
			if err != nil {
				return 0, 0, err
			}
			totalKm += km
			totalMinutes += minutes
		}
	}
	return totalKm, totalMinutes, nil
}

func buildStops(ctx context.Context, order []string, tickets map[string]model.Ticket, oracle *distancecache.Oracle) ([]model.Stop, float64, float64, error) {
	stops := make([]model.Stop, 0, len(order))
	totalKm, offset := 0.0, 0.0

	for i, id := range order {
		if i > 0 {
			km, minutes, err := oracle.Distance(ctx, tickets[order[i-1]], tickets[id])
			if err != nil {
				return nil, 0, 0, err
			}
			totalKm += km
			offset += minutes
		}
		stops = append(stops, model.Stop{TicketID: id, ArrivalOffsetMinutes: offset})
		offset += float64(tickets[id].EstimatedServiceMinutes)
	}

	return stops, totalKm, offset, nil
}
