package routing

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/shiva/crewrouter/internal/model"
	"github.com/shiva/crewrouter/pkg/distancecache"
)

// ClusterTour pairs a cluster with its already-solved intra-cluster tour.
type ClusterTour struct {
	Cluster model.Cluster
	Tour Tour
}

// Stitch builds a minimum spanning tree over cluster centroids, walks it in
// urgency-rooted DFS preorder, and concatenates the per-cluster tours,
// rotating each incoming cluster's tour to start from the member nearest
// the previous cluster's exit. The MST itself is computed with
// gonum's Prim implementation rather than a hand-rolled one.
func Stitch(
	ctx context.Context,
	clusterTours []ClusterTour,
	tickets map[string]model.Ticket,
	oracle *distancecache.Oracle,
) ([]string, error) {
	if len(clusterTours) == 0 {
		return nil, nil
	}
	if len(clusterTours) == 1 {
		return append([]string{}, clusterTours[0].Tour.TicketIDs...), nil
	}

	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range clusterTours {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < len(clusterTours); i++ {
		for j := i + 1; j < len(clusterTours); j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			weight, err := centroidMinutes(ctx, clusterTours[i].Cluster, clusterTours[j].Cluster, oracle)
			if err != nil {
				return nil, err
			}
			g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(i), T: simple.Node(j), W: weight})
		}
	}

	mst := simple.NewWeightedUndirectedGraph(0, 0)
	path.Prim(mst, g)

	adjacency := buildAdjacency(mst, len(clusterTours))

	root := rootClusterIndex(clusterTours, tickets)

	order := dfsPreorder(root, adjacency, clusterTours)

	return concatenate(ctx, order, clusterTours, tickets, oracle)
}

func centroidMinutes(ctx context.Context, a, b model.Cluster, oracle *distancecache.Oracle) (float64, error) {
	fa := model.Ticket{ID: fmt.Sprintf("centroid-%d", a.ID), Location: a.Centroid}
	fb := model.Ticket{ID: fmt.Sprintf("centroid-%d", b.ID), Location: b.Centroid}
	_, minutes, err := oracle.Distance(ctx, fa, fb)
	return minutes, err
}

type edge struct {
	to int
	weight float64
}

func buildAdjacency(mst *simple.WeightedUndirectedGraph, n int) map[int][]edge {
	adjacency := make(map[int][]edge, n)
	it := mst.Edges()
	for it.Next() {
		e := it.Edge()
		we, ok := e.(graph.WeightedEdge)
		if !ok {
			continue
		}
		u := int(we.From().ID())
		v := int(we.To().ID())
		w := we.Weight()
		adjacency[u] = append(adjacency[u], edge{to: v, weight: w})
		adjacency[v] = append(adjacency[v], edge{to: u, weight: w})
	}
	return adjacency
}

// rootClusterIndex picks the cluster holding the globally most urgent
// ticket, so emergencies are touched early even when geographically
// off-center. Ties on urgency score are broken by the smallest ticket id,
// so the choice is canonical rather than dependent on slice order.
func rootClusterIndex(clusterTours []ClusterTour, tickets map[string]model.Ticket) int {
	best := 0
	bestScore := -1.0
	bestID := ""
	for i, ct := range clusterTours {
		for _, id := range ct.Tour.TicketIDs {
			score := tickets[id].UrgencyScore
			if score > bestScore || (score == bestScore && id < bestID) {
				bestScore = score
				bestID = id
				best = i
			}
		}
	}
	return best
}

// dfsPreorder visits the MST's children in ascending edge weight, breaking
// ties by descending aggregate urgency of the child cluster, and breaking
// any remaining tie by the child cluster's smallest ticket id — so the
// traversal is fully canonical rather than dependent on adjacency-list
// iteration order.
func dfsPreorder(root int, adjacency map[int][]edge, clusterTours []ClusterTour) []int {
	visited := make(map[int]bool)
	var order []int

	var visit func(i int)
	visit = func(i int) {
		visited[i] = true
		order = append(order, i)

		children := append([]edge{}, adjacency[i]...)
		sort.Slice(children, func(a, b int) bool {
			if children[a].weight != children[b].weight {
				return children[a].weight < children[b].weight
			}
			ua := urgencyRankValue(clusterTours[children[a].to].Cluster.AggregatePriority)
			ub := urgencyRankValue(clusterTours[children[b].to].Cluster.AggregatePriority)
			if ua != ub {
				return ua < ub // lower rank number = more urgent = visited first
			}
			return minTicketID(clusterTours[children[a].to]) < minTicketID(clusterTours[children[b].to])
		})

		for _, c := range children {
			if !visited[c.to] {
				visit(c.to)
			}
		}
	}
	visit(root)

	return order
}

func urgencyRankValue(p model.Priority) int {
	return p.Rank()
}

// minTicketID returns the lexicographically smallest ticket id in a
// cluster's tour, used as the final, fully deterministic tie-break.
func minTicketID(ct ClusterTour) string {
	min := ""
	for _, id := range ct.Tour.TicketIDs {
		if min == "" || id < min {
			min = id
		}
	}
	return min
}

// concatenate walks the cluster visit order, rotating each cluster's tour
// so its entry is the member nearest the previous cluster's exit —
// unless doing so would place a ticket before its declared dependency, in
// which case the cluster's original urgency-seeded start is kept.
func concatenate(
	ctx context.Context,
	order []int,
	clusterTours []ClusterTour,
	tickets map[string]model.Ticket,
	oracle *distancecache.Oracle,
) ([]string, error) {
	var result []string
	var prevExit string

	for idx, ci := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tour := clusterTours[ci].Tour
		ids := append([]string{}, tour.TicketIDs...)

		if idx > 0 {
			rotated, err := rotateToNearestEntry(ctx, ids, prevExit, tickets, oracle)
			if err == nil {
				ids = rotated
			}
			// On error (cannot rotate without violating dependency order),
			// fall through and keep the original urgency-seeded order.
		}

		result = append(result, ids...)
		prevExit = ids[len(ids)-1]
	}

	return result, nil
}

// rotateToNearestEntry rotates a cluster's tour to start at the member
// closest to fromID, refusing the rotation if it would place any ticket
// before one of its own declared dependencies that is also in this tour.
func rotateToNearestEntry(
	ctx context.Context,
	ids []string,
	fromID string,
	tickets map[string]model.Ticket,
	oracle *distancecache.Oracle,
) ([]string, error) {
	bestIdx := 0
	bestMinutes := -1.0
	fromTicket, ok := tickets[fromID]
	if !ok {
		return ids, fmt.Errorf("stitch: unknown ticket %q", fromID)
	}

	for i, id := range ids {
		_, minutes, err := oracle.Distance(ctx, fromTicket, tickets[id])
		if err != nil {
			return ids, err
		}
		if bestMinutes < 0 || minutes < bestMinutes {
			bestMinutes = minutes
			bestIdx = i
		}
	}

	rotated := append(append([]string{}, ids[bestIdx:]...), ids[:bestIdx]...)

	if violatesDependencyOrder(rotated, tickets) {
		return ids, fmt.Errorf("stitch: rotation would violate a dependency")
	}

	return rotated, nil
}

func violatesDependencyOrder(order []string, tickets map[string]model.Ticket) bool {
	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}
	for i, id := range order {
		for _, dep := range tickets[id].Dependencies {
			if depPos, ok := position[dep]; ok && depPos > i {
				return true
			}
		}
	}
	return false
}
