package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kmtracker/kmtracker/internal/model"
)

// ErrAddressNotFound is returned when the user has no default address of a type.
var ErrAddressNotFound = errors.New("address not found")

// GetDefaultAddress returns the owner's default address of addressType.
func (r *Repository) GetDefaultAddress(ctx context.Context, ownerID, addressType string) (*model.UserAddress, error) {
	query := `
		SELECT id, user_id, address_type, address, is_default, created_at, updated_at
		FROM user_addresses
		WHERE user_id = $1 AND address_type = $2 AND is_default
	`

	var a model.UserAddress
	err := r.pool.QueryRow(ctx, query, ownerID, addressType).Scan(
		&a.ID,
		&a.OwnerID,
		&a.AddressType,
		&a.Address,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	return &a, nil
}

// UpsertDefaultAddress stores addr as the owner's default of its type,
// updating the existing row in place when there is one. The stored row is
// written back into addr.
func (r *Repository) UpsertDefaultAddress(ctx context.Context, addr *model.UserAddress) error {
	query := `
		INSERT INTO user_addresses (id, user_id, address_type, address, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, $5, $5)
		ON CONFLICT (user_id, address_type) WHERE is_default
		DO UPDATE SET address = EXCLUDED.address, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		addr.ID,
		addr.OwnerID,
		addr.AddressType,
		addr.Address,
		addr.UpdatedAt,
	).Scan(&addr.ID, &addr.CreatedAt, &addr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert address: %w", err)
	}

	addr.IsDefault = true
	return nil
}

// DeleteDefaultAddress clears the owner's default address of addressType.
func (r *Repository) DeleteDefaultAddress(ctx context.Context, ownerID, addressType string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM user_addresses WHERE user_id = $1 AND address_type = $2 AND is_default`,
		ownerID, addressType,
	)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAddressNotFound
	}

	return nil
}
