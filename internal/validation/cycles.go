package validation

import "github.com/shiva/crewrouter/internal/model"

// BreakCycles repeatedly finds a dependency cycle among ids (restricted to
// dependencies that are themselves present in ids) and drops the ticket
// with the lexicographically largest id in that cycle, until none remain.
func BreakCycles(ids []string, tickets map[string]model.Ticket) ([]string, []model.DroppedTicket) {
	order := append([]string{}, ids...)
	present := make(map[string]bool, len(order))
	for _, id := range order {
		present[id] = true
	}

	var dropped []model.DroppedTicket

	for {
		cycle := findCycle(order, tickets, present)
		if cycle == nil {
			break
		}
		victim := largestID(cycle)
		present[victim] = false
		order = removeID(order, victim)
		dropped = append(dropped, model.DroppedTicket{TicketID: victim, Reason: model.DropDependencyCycle})
	}

	return order, dropped
}

const (
	white = 0
	grey  = 1
	black = 2
)

// findCycle runs a grey/black-coloring DFS over the dependency graph
// restricted to present ids and returns the first cycle found, as the
// slice of ids on the cycle, or nil if the graph is acyclic.
func findCycle(order []string, tickets map[string]model.Ticket, present map[string]bool) []string {
	color := make(map[string]int, len(order))
	var stack []string
	var found []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = grey
		stack = append(stack, id)

		for _, dep := range tickets[id].Dependencies {
			if !present[dep] {
				continue
			}
			switch color[dep] {
			case white:
				if visit(dep) {
					return true
				}
			case grey:
				for i, s := range stack {
					if s == dep {
						found = append([]string{}, stack[i:]...)
						break
					}
				}
				return true
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, id := range order {
		if color[id] == white {
			if visit(id) {
				return found
			}
		}
	}
	return nil
}

func largestID(ids []string) string {
	largest := ids[0]
	for _, id := range ids[1:] {
		if id > largest {
			largest = id
		}
	}
	return largest
}

func removeID(ids []string, target string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
