// Package clustering implements the Clusterer (component D): density-based
// spatial clustering of same-crew-type, open tickets.
//
// No example or ecosystem library in the reference corpus implements
// DBSCAN (see DESIGN.md); this is a from-scratch implementation on the
// standard library, projecting tickets onto a local tangent plane and
// running classic DBSCAN with a fixed eps/min-samples.
package clustering

import (
	"math"
	"sort"

	"github.com/shiva/crewrouter/internal/model"
)

const (
	// EpsKm is the DBSCAN neighborhood radius.
	EpsKm = 0.5
	// MinSamples is the minimum neighborhood size for a core point.
	MinSamples = 2
)

type point struct {
	x, y float64 // projected coordinates, km
}

// project maps (lat, lon) onto a local equirectangular tangent plane
// centered on centerLat, with cosine-latitude scaling so that Euclidean
// distance in the plane approximates great-circle km. Accurate at city
// scales (<50 km); see DESIGN NOTES for the larger-scale caveat.
func project(loc model.Location, centerLat float64) point {
	const kmPerDegLat = 111.32
	latRad := centerLat * math.Pi / 180.0
	x := loc.Lon * kmPerDegLat * math.Cos(latRad)
	y := loc.Lat * kmPerDegLat
	return point{x: x, y: y}
}

func unproject(p point, centerLat float64) model.Location {
	const kmPerDegLat = 111.32
	latRad := centerLat * math.Pi / 180.0
	return model.Location{
		Lat: p.y / kmPerDegLat,
		Lon: p.x / (kmPerDegLat * math.Cos(latRad)),
	}
}

func dist(a, b point) float64 {
	dx := a.x - b.x
	dy := a.y - b.y
	return math.Sqrt(dx*dx + dy*dy)
}

// Cluster partitions tickets (already filtered to one crew type, open
// status) into geographic clusters. Noise points become singleton
// clusters — every ticket must still be visited. Empty input yields no
// clusters; a single ticket yields one singleton cluster.
func Cluster(tickets []model.Ticket) []model.Cluster {
	if len(tickets) == 0 {
		return nil
	}

	centerLat := centroidLat(tickets)
	pts := make([]point, len(tickets))
	for i, tk := range tickets {
		pts[i] = project(tk.Location, centerLat)
	}

	labels := make([]int, len(tickets)) // 0 = unvisited, -1 = noise, >0 = cluster id
	const unvisited, noise = 0, -1
	nextClusterID := 1

	neighborsOf := func(i int) []int {
		var out []int
		for j := range pts {
			if i == j {
				continue
			}
			if dist(pts[i], pts[j]) <= EpsKm {
				out = append(out, j)
			}
		}
		return out
	}

	for i := range pts {
		if labels[i] != unvisited {
			continue
		}
		neighbors := neighborsOf(i)
		if len(neighbors)+1 < MinSamples {
			labels[i] = noise
			continue
		}

		clusterID := nextClusterID
		nextClusterID++
		labels[i] = clusterID

		queue := append([]int{}, neighbors...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]

			if labels[j] == noise {
				labels[j] = clusterID
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = clusterID

			jNeighbors := neighborsOf(j)
			if len(jNeighbors)+1 >= MinSamples {
				queue = append(queue, jNeighbors...)
			}
		}
	}

	// Assign noise points their own singleton cluster ids, after the
	// density-connected ones, so cluster ids stay stable for a given input.
	for i := range labels {
		if labels[i] == noise {
			labels[i] = nextClusterID
			nextClusterID++
		}
	}

	byID := map[int][]int{} // cluster id -> ticket indices
	for i, id := range labels {
		byID[id] = append(byID[id], i)
	}

	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	// Cluster ids are assigned in ticket-index order above, so sorting by
	// id here is what keeps the returned slice order deterministic across
	// runs — map iteration over byID is not.
	clusters := make([]model.Cluster, 0, len(byID))
	for _, id := range ids {
		clusters = append(clusters, buildCluster(id, byID[id], tickets, pts, centerLat))
	}

	return clusters
}

func buildCluster(id int, idxs []int, tickets []model.Ticket, pts []point, centerLat float64) model.Cluster {
	var sumX, sumY float64
	totalService := 0
	bestPriorityRank := 99
	bestPriority := model.PriorityLow
	ids := make([]string, 0, len(idxs))

	for _, i := range idxs {
		sumX += pts[i].x
		sumY += pts[i].y
		totalService += tickets[i].EstimatedServiceMinutes
		ids = append(ids, tickets[i].ID)
		if r := tickets[i].Priority.Rank(); r < bestPriorityRank {
			bestPriorityRank = r
			bestPriority = tickets[i].Priority
		}
	}

	n := float64(len(idxs))
	centroid := unproject(point{x: sumX / n, y: sumY / n}, centerLat)

	return model.Cluster{
		ID:                  id,
		TicketIDs:           ids,
		Centroid:            centroid,
		AggregatePriority:   bestPriority,
		TotalServiceMinutes: totalService,
		IsNoise:             len(idxs) == 1,
	}
}

func centroidLat(tickets []model.Ticket) float64 {
	sum := 0.0
	for _, t := range tickets {
		sum += t.Location.Lat
	}
	return sum / float64(len(tickets))
}
