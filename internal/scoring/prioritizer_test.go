package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiva/crewrouter/internal/model"
)

// S1 — urgency dominance: order is [B, A].
func TestPrioritize_UrgencyDominance(t *testing.T) {
	a := model.Ticket{ID: "A", Priority: model.PriorityLow, CrewType: model.CrewAsphalt, Location: model.Location{Lat: 0, Lon: 0}}
	b := model.Ticket{ID: "B", Priority: model.PriorityEmergency, CrewType: model.CrewAsphalt, Location: model.Location{Lat: 1, Lon: 1}}
	tickets := []model.Ticket{a, b}
	ScoreAll(tickets)

	ordered := Prioritize(tickets)
	require.Len(t, ordered, 2)
	assert.Equal(t, "B", ordered[0].ID)
	assert.Equal(t, "A", ordered[1].ID)
}

func TestPrioritize_TieBreaksOnIDAscending(t *testing.T) {
	tickets := []model.Ticket{
		{ID: "z", Priority: model.PriorityMedium},
		{ID: "a", Priority: model.PriorityMedium},
	}
	ScoreAll(tickets)
	ordered := Prioritize(tickets)
	assert.Equal(t, "a", ordered[0].ID)
	assert.Equal(t, "z", ordered[1].ID)
}

func TestPrioritize_DoesNotMutateInput(t *testing.T) {
	tickets := []model.Ticket{
		{ID: "b", Priority: model.PriorityLow},
		{ID: "a", Priority: model.PriorityEmergency},
	}
	ScoreAll(tickets)
	_ = Prioritize(tickets)
	assert.Equal(t, "b", tickets[0].ID)
}
