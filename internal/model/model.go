// Package model contains domain models for the crew routing engine.
// These structs map to the PostgreSQL schema that backs the ticket store.
package model

import "time"

// ─── Enums ──────────────────────────────────────────────────

type ProblemType string

const (
	ProblemPothole        ProblemType = "pothole"
	ProblemWaterLeak      ProblemType = "water_leak"
	ProblemSewerLeak      ProblemType = "sewer_leak"
	ProblemDarkLamp       ProblemType = "dark_lamp"
	ProblemExposedWiring  ProblemType = "exposed_wiring"
	ProblemCloggedDrain   ProblemType = "clogged_drain"
	ProblemBrokenSidewalk ProblemType = "broken_sidewalk"
	ProblemTrafficLight   ProblemType = "faulty_traffic_light"
)

type Priority string

const (
	PriorityEmergency Priority = "emergency"
	PriorityUrgent    Priority = "urgent"
	PriorityHigh      Priority = "high"
	PriorityMedium    Priority = "medium"
	PriorityLow       Priority = "low"
)

// Rank returns the ascending urgency rank used as the Prioritizer's
// secondary sort key (lower rank sorts first).
func (p Priority) Rank() int {
	switch p {
	case PriorityEmergency:
		return 0
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	default:
		return 5
	}
}

type CrewType string

const (
	CrewAsphalt    CrewType = "asphalt"
	CrewHydraulic  CrewType = "hydraulic"
	CrewElectric   CrewType = "electric"
	CrewSanitation CrewType = "sanitation"
	CrewGeneral    CrewType = "general"
)

type ProblemSize string

const (
	SizeLarge  ProblemSize = "large"
	SizeMedium ProblemSize = "medium"
	SizeSmall  ProblemSize = "small"
	SizeUnset  ProblemSize = ""
)

type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusDone       TicketStatus = "done"
	StatusCancelled  TicketStatus = "cancelled"
)

// DropReason explains why a ticket did not make it into a route.
type DropReason string

const (
	DropBudget             DropReason = "budget"
	DropDependencyMissing  DropReason = "dependency_missing"
	DropDependencyCycle    DropReason = "dependency_cycle"
	DropBadData            DropReason = "bad_data"
)

// Strategy selects which of the Engine Facade's pipeline variants runs.
type Strategy string

const (
	StrategyUrgencyFirst Strategy = "urgency_first"
	StrategyGeographic   Strategy = "geographic"
	StrategyMixed        Strategy = "mixed"
)

// ExitCode is the facade-level outcome of one optimize call.
type ExitCode string

const (
	ExitOK             ExitCode = "ok"
	ExitNoCandidates   ExitCode = "no_candidates"
	ExitPartial        ExitCode = "partial"
	ExitInvalidRequest ExitCode = "invalid_request"
)

// ─── Location ───────────────────────────────────────────────

// Location is a WGS-84 geographic point (EPSG:4326).
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ─── Ticket ─────────────────────────────────────────────────

// Ticket (a.k.a. MaintenancePoint) is one maintenance work item.
// Immutable for the duration of a single optimize call.
type Ticket struct {
	ID          string   `json:"id"`
	Location    Location `json:"location"`
	ProblemType ProblemType `json:"problem_type"`
	Priority    Priority    `json:"priority"`
	CrewType    CrewType    `json:"crew_type"`
	ProblemSize ProblemSize `json:"problem_size,omitempty"`

	EstimatedServiceMinutes int `json:"estimated_service_minutes"`

	AffectsTraffic        bool `json:"affects_traffic"`
	AffectsCommerce       bool `json:"affects_commerce"`
	NearCriticalLocation  bool `json:"near_critical_location"`
	MainRoad              bool `json:"main_road"`

	ComplaintsCount   int      `json:"complaints_count"`
	RequiresRoadBlock bool     `json:"requires_road_block"`
	Dependencies      []string `json:"dependencies,omitempty"`

	Status TicketStatus `json:"status"`

	// UrgencyScore is recomputed every run; the persisted value is an
	// advisory cache only, never trusted across runs.
	UrgencyScore float64 `json:"urgency_score"`

	Materials []string       `json:"materials,omitempty"`
	Photos    []string       `json:"photos,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ─── Cluster ────────────────────────────────────────────────

// Cluster is an ephemeral, per-run grouping of tickets produced by the
// Clusterer and consumed by the Intra-cluster Solver and Stitcher.
type Cluster struct {
	ID             int
	TicketIDs      []string
	Centroid       Location
	// AggregatePriority is the most urgent priority among members.
	AggregatePriority Priority
	TotalServiceMinutes int
	IsNoise        bool
}

// ─── Tour / Route ───────────────────────────────────────────

// Stop is one visited ticket with its planned cumulative arrival offset.
type Stop struct {
	TicketID           string  `json:"ticket_id"`
	ArrivalOffsetMinutes float64 `json:"arrival_offset_minutes"`
}

// DroppedTicket records why a candidate ticket did not make the final route.
type DroppedTicket struct {
	TicketID string     `json:"ticket_id"`
	Reason   DropReason `json:"reason"`
}

// RouteStats carries summary counters for a Route.
type RouteStats struct {
	ClustersServed          int `json:"clusters_served"`
	EmergenciesCovered      int `json:"emergencies_covered"`
	SkippedDueToBudgetCount int `json:"skipped_due_to_budget_count"`
}

// Route is the optimization output for one crew on one date.
type Route struct {
	CrewType          CrewType        `json:"crew_type"`
	Date              string          `json:"date"`
	Stops             []Stop          `json:"stops"`
	TotalDistanceKm   float64         `json:"total_distance_km"`
	TotalTimeMinutes  float64         `json:"total_time_minutes"`
	Stats             RouteStats      `json:"stats"`
	Dropped           []DroppedTicket `json:"dropped"`
	// Reordered lists, in the order the repair pass moved them, the ids of
	// tickets that were shifted later in the sequence to satisfy a
	// dependency (not dropped). Kept separate from Dropped since DropReason
	// is a closed set of drop reasons, not reorder reasons.
	Reordered         []string        `json:"reordered"`
	ExitCode          ExitCode        `json:"exit_code"`
}

// ─── Distance cache entry ───────────────────────────────────

// DistanceCacheEntry is the persisted shape of one oracle lookup.
type DistanceCacheEntry struct {
	AID        string    `json:"a_id"`
	BID        string    `json:"b_id"`
	KM         float64   `json:"km"`
	Minutes    float64   `json:"minutes"`
	ComputedAt time.Time `json:"computed_at"`
}

// ─── Optimize request ───────────────────────────────────────

// OptimizeRequest is the input accepted by the Engine Facade.
type OptimizeRequest struct {
	CrewType   CrewType `json:"crew_type"`
	Date       string   `json:"date"`
	MaxHours   float64  `json:"max_hours"`
	MaxPoints  int      `json:"max_points"`
	Strategy   Strategy `json:"strategy"`
	DeadlineMS int      `json:"deadline_ms,omitempty"`
}
