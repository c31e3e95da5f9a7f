package clustering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiva/crewrouter/internal/model"
)

func TestCluster_EmptyInputYieldsNoClusters(t *testing.T) {
	assert.Nil(t, Cluster(nil))
}

func TestCluster_SingleInputYieldsOneSingletonCluster(t *testing.T) {
	tickets := []model.Ticket{{ID: "a", Location: model.Location{Lat: 1, Lon: 1}}}
	clusters := Cluster(tickets)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"a"}, clusters[0].TicketIDs)
}

// S2 — clustering: six tickets in two tight groups ~1570 km apart; expect
// exactly two clusters, covering all six tickets.
func TestCluster_TwoGroups(t *testing.T) {
	mk := func(id string, lat, lon float64) model.Ticket {
		return model.Ticket{
			ID: id, Location: model.Location{Lat: lat, Lon: lon},
			CrewType: model.CrewGeneral, Priority: model.PriorityMedium,
			EstimatedServiceMinutes: 10,
		}
	}
	tickets := []model.Ticket{
		mk("1", 0, 0), mk("2", 0, 0.001), mk("3", 0, 0.002),
		mk("4", 10, 10), mk("5", 10, 10.001), mk("6", 10, 10.002),
	}

	clusters := Cluster(tickets)
	require.Len(t, clusters, 2)

	total := 0
	for _, c := range clusters {
		total += len(c.TicketIDs)
	}
	assert.Equal(t, 6, total)
}

func TestCluster_AggregatePriorityIsMostUrgent(t *testing.T) {
	tickets := []model.Ticket{
		{ID: "a", Priority: model.PriorityLow, Location: model.Location{Lat: 0, Lon: 0}},
		{ID: "b", Priority: model.PriorityEmergency, Location: model.Location{Lat: 0, Lon: 0.0001}},
	}
	clusters := Cluster(tickets)
	require.Len(t, clusters, 1)
	assert.Equal(t, model.PriorityEmergency, clusters[0].AggregatePriority)
}
