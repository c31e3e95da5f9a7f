package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiva/crewrouter/internal/model"
	"github.com/shiva/crewrouter/pkg/distancecache"
)

func collocated(id string, urgency float64, serviceMinutes int) model.Ticket {
	return model.Ticket{
		ID:                      id,
		Location:                model.Location{Lat: 0, Lon: 0},
		UrgencyScore:             urgency,
		EstimatedServiceMinutes: serviceMinutes,
		Priority:                model.PriorityMedium,
	}
}

// S3 — T2 depends on T1 despite lower urgency; the validator must still
// place T1 first.
func TestValidate_DependencyReordersDespiteLowerUrgency(t *testing.T) {
	tickets := map[string]model.Ticket{
		"T1": collocated("T1", 10, 5),
		"T2": {ID: "T2", Location: model.Location{Lat: 0, Lon: 0}, UrgencyScore: 900,
			EstimatedServiceMinutes: 5, Dependencies: []string{"T1"}, Priority: model.PriorityEmergency},
	}
	oracle := distancecache.NewOracle(nil, 30, nil)

	result, err := Validate(context.Background(), []string{"T2", "T1"}, tickets, oracle, DefaultMaxMinutes, 0)
	require.NoError(t, err)
	require.Len(t, result.Stops, 2)
	assert.Equal(t, "T1", result.Stops[0].TicketID)
	assert.Equal(t, "T2", result.Stops[1].TicketID)
}

// S4 — 10 collocated 60-minute tickets, max_hours=3 (180 min): exactly 3
// are kept, the top-3 by urgency, the other 7 dropped with reason=budget.
func TestValidate_BudgetTruncation(t *testing.T) {
	tickets := make(map[string]model.Ticket, 10)
	var order []string
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		tickets[id] = collocated(id, float64(100-i), 60)
		order = append(order, id)
	}
	oracle := distancecache.NewOracle(nil, 30, nil)

	result, err := Validate(context.Background(), order, tickets, oracle, 180, 0)
	require.NoError(t, err)

	assert.Len(t, result.Stops, 3)
	assert.Len(t, result.Dropped, 7)
	for _, d := range result.Dropped {
		assert.Equal(t, model.DropBudget, d.Reason)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ticketIDs(result.Stops))
}

func ticketIDs(stops []model.Stop) []string {
	ids := make([]string, len(stops))
	for i, s := range stops {
		ids[i] = s.TicketID
	}
	return ids
}

func TestValidate_MissingDependencyIsDropped(t *testing.T) {
	tickets := map[string]model.Ticket{
		"a": {ID: "a", Location: model.Location{Lat: 0, Lon: 0}, Dependencies: []string{"ghost"}, EstimatedServiceMinutes: 5},
	}
	oracle := distancecache.NewOracle(nil, 30, nil)

	result, err := Validate(context.Background(), []string{"a"}, tickets, oracle, DefaultMaxMinutes, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Stops)
	require.Len(t, result.Dropped, 1)
	assert.Equal(t, model.DropDependencyMissing, result.Dropped[0].Reason)
}

func TestValidate_EmergencySafeguardSwapsInDroppedEmergency(t *testing.T) {
	tickets := map[string]model.Ticket{
		"low1": collocated("low1", 5, 60),
		"low2": collocated("low2", 4, 60),
		"low3": collocated("low3", 3, 60),
		"emg":  {ID: "emg", Location: model.Location{Lat: 0, Lon: 0}, UrgencyScore: 999, EstimatedServiceMinutes: 60, Priority: model.PriorityEmergency},
	}
	order := []string{"low1", "low2", "low3", "emg"}
	oracle := distancecache.NewOracle(nil, 30, nil)

	result, err := Validate(context.Background(), order, tickets, oracle, 180, 0)
	require.NoError(t, err)

	kept := ticketIDs(result.Stops)
	assert.Contains(t, kept, "emg")
	assert.Len(t, kept, 3)

	droppedIDs := make([]string, len(result.Dropped))
	for i, d := range result.Dropped {
		droppedIDs[i] = d.TicketID
	}
	assert.Contains(t, droppedIDs, "low3")
}

func TestValidate_ArrivalOffsetsAreMonotonic(t *testing.T) {
	tickets := map[string]model.Ticket{
		"a": collocated("a", 10, 10),
		"b": collocated("b", 9, 10),
		"c": collocated("c", 8, 10),
	}
	oracle := distancecache.NewOracle(nil, 30, nil)

	result, err := Validate(context.Background(), []string{"a", "b", "c"}, tickets, oracle, DefaultMaxMinutes, 0)
	require.NoError(t, err)

	for i := 1; i < len(result.Stops); i++ {
		assert.Greater(t, result.Stops[i].ArrivalOffsetMinutes, result.Stops[i-1].ArrivalOffsetMinutes)
	}
}
