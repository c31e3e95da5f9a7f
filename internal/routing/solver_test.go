package routing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiva/crewrouter/internal/model"
	"github.com/shiva/crewrouter/pkg/distancecache"
)

func mkTicket(id string, lat, lon float64, urgency float64) model.Ticket {
	return model.Ticket{ID: id, Location: model.Location{Lat: lat, Lon: lon}, UrgencyScore: urgency}
}

func tourMinutes(ctx context.Context, order []string, tickets map[string]model.Ticket, oracle *distancecache.Oracle) float64 {
	total := 0.0
	for i := 0; i < len(order)-1; i++ {
		_, m, _ := oracle.Distance(ctx, tickets[order[i]], tickets[order[i+1]])
		total += m
	}
	return total
}

func TestSolveCluster_SingleTicket(t *testing.T) {
	tickets := map[string]model.Ticket{"a": mkTicket("a", 0, 0, 1)}
	cluster := model.Cluster{TicketIDs: []string{"a"}}
	oracle := distancecache.NewOracle(nil, 30, nil)

	tour, err := SolveCluster(context.Background(), cluster, tickets, oracle, SeedByUrgency)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tour.TicketIDs)
}

func TestSolveCluster_SeedsByHighestUrgency(t *testing.T) {
	tickets := map[string]model.Ticket{
		"a": mkTicket("a", 0, 0, 10),
		"b": mkTicket("b", 0, 0.01, 500),
		"c": mkTicket("c", 0, 0.02, 20),
	}
	cluster := model.Cluster{TicketIDs: []string{"a", "b", "c"}}
	oracle := distancecache.NewOracle(nil, 30, nil)

	tour, err := SolveCluster(context.Background(), cluster, tickets, oracle, SeedByUrgency)
	require.NoError(t, err)
	assert.Equal(t, "b", tour.Entry())
}

// 2-opt must never leave a tour worse than its nearest-neighbor seed.
func TestSolveCluster_TourIsNeverWorseThanNearestNeighborSeed(t *testing.T) {
	tickets := map[string]model.Ticket{
		"a": mkTicket("a", 0, 0, 100),
		"b": mkTicket("b", 0, 0.05, 10),
		"c": mkTicket("c", 0.05, 0, 10),
		"d": mkTicket("d", 0.05, 0.05, 10),
	}
	ids := []string{"a", "b", "c", "d"}
	cluster := model.Cluster{TicketIDs: ids}
	oracle := distancecache.NewOracle(nil, 30, nil)
	ctx := context.Background()

	seedTour, err := nearestNeighborTour(ctx, "a", ids, tickets, oracle)
	require.NoError(t, err)
	seedCost := tourMinutes(ctx, seedTour, tickets, oracle)

	refined, err := twoOpt(ctx, append([]string{}, seedTour...), tickets, oracle)
	require.NoError(t, err)
	refinedCost := tourMinutes(ctx, refined, tickets, oracle)

	assert.LessOrEqual(t, refinedCost, seedCost+Epsilon)
}

func TestSolveCluster_EveryTicketVisitedExactlyOnce(t *testing.T) {
	tickets := map[string]model.Ticket{
		"a": mkTicket("a", 0, 0, 5),
		"b": mkTicket("b", 0, 0.01, 5),
		"c": mkTicket("c", 1, 1, 5),
	}
	cluster := model.Cluster{TicketIDs: []string{"a", "b", "c"}}
	oracle := distancecache.NewOracle(nil, 30, nil)

	tour, err := SolveCluster(context.Background(), cluster, tickets, oracle, SeedByUrgency)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, id := range tour.TicketIDs {
		assert.False(t, seen[id], "ticket %s visited more than once", id)
		seen[id] = true
	}
	assert.Len(t, seen, 3)
}
