package scoring

import (
	"sort"

	"github.com/shiva/crewrouter/internal/model"
)

// Prioritize totally orders tickets by: urgency desc, priority rank asc,
// complaints desc, id asc — the final tie-break makes the order
// deterministic and stable across runs.
//
// Tickets must already have UrgencyScore populated (see ScoreAll);
// Prioritize does not recompute it.
func Prioritize(tickets []model.Ticket) []model.Ticket {
	sorted := make([]model.Ticket, len(tickets))
	copy(sorted, tickets)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.UrgencyScore != b.UrgencyScore {
			return a.UrgencyScore > b.UrgencyScore
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if a.ComplaintsCount != b.ComplaintsCount {
			return a.ComplaintsCount > b.ComplaintsCount
		}
		return a.ID < b.ID
	})

	return sorted
}
