package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shiva/crewrouter/internal/model"
)

func TestScore_PinnedWeights(t *testing.T) {
	tk := model.Ticket{
		Priority:         model.PriorityEmergency,
		ProblemType:      model.ProblemExposedWiring,
		ProblemSize:      model.SizeLarge,
		AffectsTraffic:   true,
		NearCriticalLocation: true,
		MainRoad:         true,
		AffectsCommerce:  true,
		ComplaintsCount:  100, // capped at 50
	}
	// (1000 + 200 + (150+100+80+60) + 50*5) * 1.5 = (1000+200+390+250)*1.5 = 1840*1.5
	want := (1000.0 + 200.0 + 390.0 + 250.0) * 1.5
	assert.Equal(t, want, Score(tk))
}

func TestScore_UnsetSizeDefaultsToOne(t *testing.T) {
	tk := model.Ticket{Priority: model.PriorityLow, ProblemType: model.ProblemPothole}
	assert.Equal(t, 10.0+40.0, Score(tk))
}

// S1 — urgency dominance: emergency at far-away coords still scores far
// above a low-priority ticket.
func TestScore_EmergencyDominatesLow(t *testing.T) {
	low := model.Ticket{ID: "A", Priority: model.PriorityLow, CrewType: model.CrewAsphalt}
	emergency := model.Ticket{ID: "B", Priority: model.PriorityEmergency, CrewType: model.CrewAsphalt}
	assert.Greater(t, Score(emergency), Score(low))
}

func TestScore_ComplaintBonusCapsAtFifty(t *testing.T) {
	capped := model.Ticket{ComplaintsCount: 50}
	over := model.Ticket{ComplaintsCount: 1000}
	assert.Equal(t, Score(capped), Score(over))
}
