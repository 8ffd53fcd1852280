package model

import "time"

// Address types stored in user_addresses.
const (
	AddressTypeHome = "home"
)

// UserAddress is a row of the user_addresses table.
// The home address is the row with type "home" and IsDefault set.
type UserAddress struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	AddressType string    `json:"address_type"`
	Address     string    `json:"address"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HomeAddressChanged is published whenever a user's home address is set or cleared.
// Address is empty when the home address was cleared.
type HomeAddressChanged struct {
	OwnerID   string    `json:"owner_id"`
	Address   string    `json:"address"`
	ChangedAt time.Time `json:"changed_at"`
}
