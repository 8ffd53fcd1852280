package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kmtracker/kmtracker/internal/model"
)

// Common errors for favorite repository operations.
var (
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrFavoriteExists   = errors.New("favorite already exists")
)

// CreateFavorite inserts a favorite. A second favorite whose address folds
// to the same key for the same owner fails with ErrFavoriteExists.
func (r *Repository) CreateFavorite(ctx context.Context, fav *model.Favorite) error {
	query := `
		INSERT INTO favorites (id, user_id, label, address, address_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		fav.ID,
		fav.OwnerID,
		fav.Label,
		fav.Address,
		model.AddressKey(fav.Address),
		fav.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrFavoriteExists
		}
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	return nil
}

// ListFavorites returns the owner's favorites, newest first.
func (r *Repository) ListFavorites(ctx context.Context, ownerID string) ([]*model.Favorite, error) {
	query := `
		SELECT id, user_id, label, address, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favs := make([]*model.Favorite, 0)
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Label, &f.Address, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favs = append(favs, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}

	return favs, nil
}

// FavoriteAddressExists reports whether the owner already saved address,
// compared case-insensitively after trimming.
func (r *Repository) FavoriteAddressExists(ctx context.Context, ownerID, address string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND address_key = $2)`,
		ownerID, model.AddressKey(address),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

// DeleteFavorite removes a favorite only when both id and owner match.
func (r *Repository) DeleteFavorite(ctx context.Context, id, ownerID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrFavoriteNotFound
	}

	return nil
}
