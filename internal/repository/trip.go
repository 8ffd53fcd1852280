package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kmtracker/kmtracker/internal/model"
)

// ErrTripNotFound is returned when no trip matches both id and owner.
var ErrTripNotFound = errors.New("trip not found")

const tripColumns = `id, user_id, date, start_address, end_address, km::float8, duration, purpose, notes, estimated, created_at`

// CreateTrip inserts a trip.
func (r *Repository) CreateTrip(ctx context.Context, trip *model.Trip) error {
	query := `
		INSERT INTO trips (id, user_id, date, start_address, end_address, km, duration, purpose, notes, estimated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		trip.ID,
		trip.OwnerID,
		trip.Date,
		trip.StartAddress,
		trip.EndAddress,
		trip.Km,
		trip.Duration,
		trip.Purpose,
		trip.Notes,
		trip.Estimated,
		trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	return nil
}

// ListTrips returns the owner's trips, newest date first.
func (r *Repository) ListTrips(ctx context.Context, ownerID string) ([]*model.Trip, error) {
	query := `SELECT ` + tripColumns + `
		FROM trips
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	trips := make([]*model.Trip, 0)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}

	return trips, nil
}

// DeleteTrip removes a trip only when both id and owner match.
func (r *Repository) DeleteTrip(ctx context.Context, id, ownerID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM trips WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTripNotFound
	}

	return nil
}

func scanTrip(row pgx.Row) (*model.Trip, error) {
	var t model.Trip
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Date,
		&t.StartAddress,
		&t.EndAddress,
		&t.Km,
		&t.Duration,
		&t.Purpose,
		&t.Notes,
		&t.Estimated,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Date = model.CalendarDate(t.Date)
	return &t, nil
}
