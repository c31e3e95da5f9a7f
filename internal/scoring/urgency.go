// Package scoring implements the Urgency Scorer (component B) and the
// Prioritizer (component C).
package scoring

import "github.com/shiva/crewrouter/internal/model"

// The weight tables below are the contract fixed by the urgency formula:
// exact values are pinned by tests and must not drift even though the
// source production weights were not fully recoverable (see DESIGN.md).

var priorityBase = map[model.Priority]float64{
	model.PriorityEmergency: 1000,
	model.PriorityUrgent:    500,
	model.PriorityHigh:      200,
	model.PriorityMedium:    50,
	model.PriorityLow:       10,
}

var sizeFactor = map[model.ProblemSize]float64{
	model.SizeLarge:  1.5,
	model.SizeMedium: 1.0,
	model.SizeSmall:  0.7,
	model.SizeUnset:  1.0,
}

var typeBonus = map[model.ProblemType]float64{
	model.ProblemExposedWiring:  200,
	model.ProblemTrafficLight:   180,
	model.ProblemSewerLeak:      120,
	model.ProblemWaterLeak:      100,
	model.ProblemDarkLamp:       60,
	model.ProblemPothole:        40,
	model.ProblemCloggedDrain:   40,
	model.ProblemBrokenSidewalk: 20,
}

const (
	impactAffectsTraffic       = 150
	impactNearCriticalLocation = 100
	impactMainRoad             = 80
	impactAffectsCommerce      = 60

	complaintBonusPerComplaint = 5
	complaintBonusCap          = 50
)

// Score computes the scalar urgency of one ticket. Weights are fixed (see
// above); ticket tags not present in a table contribute zero.
func Score(t model.Ticket) float64 {
	impact := 0.0
	if t.AffectsTraffic {
		impact += impactAffectsTraffic
	}
	if t.NearCriticalLocation {
		impact += impactNearCriticalLocation
	}
	if t.MainRoad {
		impact += impactMainRoad
	}
	if t.AffectsCommerce {
		impact += impactAffectsCommerce
	}

	complaints := t.ComplaintsCount
	if complaints > complaintBonusCap {
		complaints = complaintBonusCap
	}
	complaintBonus := float64(complaints) * complaintBonusPerComplaint

	base := priorityBase[t.Priority]
	tBonus := typeBonus[t.ProblemType]
	size := sizeFactor[t.ProblemSize]
	if size == 0 {
		size = 1.0
	}

	return (base + tBonus + impact + complaintBonus) * size
}

// ScoreAll scores every ticket in place, setting Ticket.UrgencyScore.
// Recomputed every run; the persisted value is an advisory cache only.
func ScoreAll(tickets []model.Ticket) {
	for i := range tickets {
		tickets[i].UrgencyScore = Score(tickets[i])
	}
}
