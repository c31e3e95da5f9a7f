// Package repository provides database access for the crew routing engine.
//
// The spatial location column is a PostGIS geography value, read back as
// lat/lon with ST_Y/ST_X; array/object-shaped columns
// (materials, photos, metadata, dependencies) are stored as JSON and
// scanned into []byte before being unmarshaled, keeping the repository
// layer itself free of business logic.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiva/crewrouter/internal/model"
)

// TicketRepository provides database access for maintenance tickets.
type TicketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository creates a new repository backed by the given PG pool.
func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = `
	id,
	ST_Y(location) AS lat, ST_X(location) AS lon,
	problem_type, priority, crew_type, problem_size,
	estimated_service_minutes,
	affects_traffic, affects_commerce, near_critical_location, main_road,
	complaints_count, requires_road_block,
	dependencies, status, urgency_score,
	materials, photos, metadata,
	created_at, updated_at`

// ListOpenTickets returns every open ticket for a crew type. The core does
// no spatial filtering here — it pulls the filtered set and does its own
// geometry in `pkg/geo`/`internal/clustering`.
func (r *TicketRepository) ListOpenTickets(ctx context.Context, crew model.CrewType) ([]model.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		WHERE status = 'open' AND crew_type = $1
		ORDER BY created_at ASC`, ticketColumns)

	rows, err := r.pool.Query(ctx, query, crew)
	if err != nil {
		return nil, fmt.Errorf("ticket repository: list open tickets: %w", err)
	}
	defer rows.Close()

	var tickets []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("ticket repository: scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// GetTicket fetches a single ticket by id.
func (r *TicketRepository) GetTicket(ctx context.Context, id string) (model.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id = $1`, ticketColumns)
	row := r.pool.QueryRow(ctx, query, id)

	t, err := scanTicket(row)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("ticket repository: get ticket %s: %w", id, err)
	}
	return t, nil
}

// rowScanner abstracts over pgx.Row and pgx.Rows, both of which expose Scan.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (model.Ticket, error) {
	var t model.Ticket
	var dependenciesJSON, materialsJSON, photosJSON, metadataJSON []byte

	err := row.Scan(
		&t.ID,
		&t.Location.Lat, &t.Location.Lon,
		&t.ProblemType, &t.Priority, &t.CrewType, &t.ProblemSize,
		&t.EstimatedServiceMinutes,
		&t.AffectsTraffic, &t.AffectsCommerce, &t.NearCriticalLocation, &t.MainRoad,
		&t.ComplaintsCount, &t.RequiresRoadBlock,
		&dependenciesJSON, &t.Status, &t.UrgencyScore,
		&materialsJSON, &photosJSON, &metadataJSON,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Ticket{}, err
	}

	if err := unmarshalIfPresent(dependenciesJSON, &t.Dependencies); err != nil {
		return model.Ticket{}, fmt.Errorf("unmarshal dependencies: %w", err)
	}
	if err := unmarshalIfPresent(materialsJSON, &t.Materials); err != nil {
		return model.Ticket{}, fmt.Errorf("unmarshal materials: %w", err)
	}
	if err := unmarshalIfPresent(photosJSON, &t.Photos); err != nil {
		return model.Ticket{}, fmt.Errorf("unmarshal photos: %w", err)
	}
	if err := unmarshalIfPresent(metadataJSON, &t.Metadata); err != nil {
		return model.Ticket{}, fmt.Errorf("unmarshal metadata: %w", err)
	}

	return t, nil
}

func unmarshalIfPresent(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

// SaveRoute persists the engine's output as a single-row
// INSERT ... RETURNING. Stops and the dropped-ticket manifest are stored as JSON;
// they are write-once artifacts, not queried relationally.
func (r *TicketRepository) SaveRoute(ctx context.Context, route model.Route) (string, error) {
	stopsJSON, err := json.Marshal(route.Stops)
	if err != nil {
		return "", fmt.Errorf("ticket repository: marshal stops: %w", err)
	}
	droppedJSON, err := json.Marshal(route.Dropped)
	if err != nil {
		return "", fmt.Errorf("ticket repository: marshal dropped: %w", err)
	}

	id := uuid.NewString()

	query := `
		INSERT INTO routes (
			id, crew_type, date, stops, dropped,
			total_distance_km, total_time_minutes,
			clusters_served, emergencies_covered, skipped_due_to_budget_count,
			exit_code
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	var returnedID string
	err = r.pool.QueryRow(ctx, query,
		id, route.CrewType, route.Date, stopsJSON, droppedJSON,
		route.TotalDistanceKm, route.TotalTimeMinutes,
		route.Stats.ClustersServed, route.Stats.EmergenciesCovered, route.Stats.SkippedDueToBudgetCount,
		route.ExitCode,
	).Scan(&returnedID)
	if err != nil {
		return "", fmt.Errorf("ticket repository: save route: %w", err)
	}

	return returnedID, nil
}
