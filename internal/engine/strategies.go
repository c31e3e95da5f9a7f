package engine

import (
	"github.com/shiva/crewrouter/internal/clustering"
	"github.com/shiva/crewrouter/internal/model"
	"github.com/shiva/crewrouter/internal/routing"
)

// strategyFunc turns a priority-sorted ticket slice into the clusters the
// Intra-cluster Solver should run over, plus the seed mode each cluster's
// tour should use.
type strategyFunc func(tickets []model.Ticket) ([]model.Cluster, routing.SeedMode)

// strategyUrgencyFirst skips the Clusterer entirely: the sorted tickets
// become one cluster, whose tour is seeded by its most urgent ticket and
// then built by nearest neighbor and 2-opt like any other cluster.
func strategyUrgencyFirst(tickets []model.Ticket) ([]model.Cluster, routing.SeedMode) {
	if len(tickets) == 0 {
		return nil, routing.SeedByUrgency
	}

	ids := make([]string, len(tickets))
	totalMinutes := 0
	aggregate := tickets[0].Priority
	var sumLat, sumLon float64
	for i, t := range tickets {
		ids[i] = t.ID
		totalMinutes += t.EstimatedServiceMinutes
		if t.Priority.Rank() < aggregate.Rank() {
			aggregate = t.Priority
		}
		sumLat += t.Location.Lat
		sumLon += t.Location.Lon
	}

	n := float64(len(tickets))
	cluster := model.Cluster{
		ID: 0,
		TicketIDs: ids,
		Centroid: model.Location{Lat: sumLat / n, Lon: sumLon / n},
		AggregatePriority: aggregate,
		TotalServiceMinutes: totalMinutes,
	}
	return []model.Cluster{cluster}, routing.SeedByUrgency
}

// strategyGeographic runs the full Clusterer but seeds each cluster's tour
// from the member closest to the cluster centroid rather than by urgency.
func strategyGeographic(tickets []model.Ticket) ([]model.Cluster, routing.SeedMode) {
	return clustering.Cluster(tickets), routing.SeedByCentroidProximity
}

// strategyMixed is the default: full pipeline, urgency-seeded clusters.
func strategyMixed(tickets []model.Ticket) ([]model.Cluster, routing.SeedMode) {
	return clustering.Cluster(tickets), routing.SeedByUrgency
}
