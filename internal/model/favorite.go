package model

import (
	"strings"
	"time"
)

// Favorite is a saved label/address pair for quick reuse.
type Favorite struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Label     string    `json:"label"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// AddressKey returns the key used to detect duplicate favorites:
// the trimmed, case-folded address.
func AddressKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// DefaultLabel derives a label from an address: the text before the first comma.
func DefaultLabel(address string) string {
	address = strings.TrimSpace(address)
	if i := strings.Index(address, ","); i >= 0 {
		address = address[:i]
	}
	return strings.TrimSpace(address)
}
