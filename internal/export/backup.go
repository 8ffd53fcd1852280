package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kmtracker/kmtracker/internal/model"
)

// BackupVersion is the format version written into every backup.
const BackupVersion = "1.0"

// Backup is the full account export.
type Backup struct {
	ExportDate time.Time     `json:"exportDate"`
	Version    string        `json:"version"`
	Data       BackupData    `json:"data"`
	Summary    BackupSummary `json:"summary"`
}

// BackupData holds the exported records.
type BackupData struct {
	Trips       []*model.Trip     `json:"trips"`
	Favorites   []*model.Favorite `json:"favorites"`
	HomeAddress string            `json:"homeAddress"`
}

// BackupSummary holds totals over the exported records.
type BackupSummary struct {
	TotalTrips     int     `json:"totalTrips"`
	TotalDistance  float64 `json:"totalDistance"`
	TotalFavorites int     `json:"totalFavorites"`
}

// NewBackup assembles a backup document.
func NewBackup(trips []*model.Trip, favorites []*model.Favorite, homeAddress string, now time.Time) *Backup {
	if trips == nil {
		trips = []*model.Trip{}
	}
	if favorites == nil {
		favorites = []*model.Favorite{}
	}

	var total float64
	for _, t := range trips {
		total += t.Km
	}

	return &Backup{
		ExportDate: now.UTC(),
		Version:    BackupVersion,
		Data: BackupData{
			Trips:       trips,
			Favorites:   favorites,
			HomeAddress: homeAddress,
		},
		Summary: BackupSummary{
			TotalTrips:     len(trips),
			TotalDistance:  total,
			TotalFavorites: len(favorites),
		},
	}
}

// BackupFilename returns the backup filename stamped with the UTC date of now.
func BackupFilename(now time.Time) string {
	return fmt.Sprintf("business-tracker-backup-%s.json", now.UTC().Format(model.DateLayout))
}

// WriteBackup writes the backup as indented JSON.
func WriteBackup(w io.Writer, b *Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}
