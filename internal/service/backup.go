package service

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/kmtracker/kmtracker/internal/export"
	"github.com/kmtracker/kmtracker/internal/metrics"
	"github.com/kmtracker/kmtracker/internal/model"
	"github.com/kmtracker/kmtracker/internal/repository"
)

// BackupService assembles the JSON account backup.
type BackupService struct {
	trips     TripStore
	favorites FavoriteStore
	addresses AddressStore
	metrics   metrics.Recorder
	now       func() time.Time
}

// NewBackupService creates a new BackupService.
func NewBackupService(trips TripStore, favorites FavoriteStore, addresses AddressStore, recorder metrics.Recorder) *BackupService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BackupService{
		trips:     trips,
		favorites: favorites,
		addresses: addresses,
		metrics:   recorder,
		now:       time.Now,
	}
}

// BackupExport is a backup document and its download filename.
type BackupExport struct {
	Filename string
	Backup   *export.Backup
}

// Export collects the owner's trips, favorites and home address.
func (s *BackupService) Export(ctx context.Context, ownerID string) (*BackupExport, error) {
	trips, err := s.trips.ListTrips(ctx, ownerID)
	if err != nil {
		return nil, backend("list trips", err)
	}

	favs, err := s.favorites.ListFavorites(ctx, ownerID)
	if err != nil {
		return nil, backend("list favorites", err)
	}

	home := ""
	addr, err := s.addresses.GetDefaultAddress(ctx, ownerID, model.AddressTypeHome)
	switch {
	case err == nil:
		home = addr.Address
	case !errors.Is(err, repository.ErrAddressNotFound):
		return nil, backend("get home address", err)
	}

	now := s.now()
	s.metrics.IncExport("json")

	return &BackupExport{
		Filename: export.BackupFilename(now),
		Backup:   export.NewBackup(trips, favs, home, now),
	}, nil
}

// ExportTripsCSV renders every trip the owner has as the backup CSV log.
// An owner without trips gets export.ErrNoTrips.
func (s *BackupService) ExportTripsCSV(ctx context.Context, ownerID string) (*CSVExport, error) {
	trips, err := s.trips.ListTrips(ctx, ownerID)
	if err != nil {
		return nil, backend("list trips", err)
	}

	var buf bytes.Buffer
	if err := export.WriteTripsCSV(&buf, trips); err != nil {
		return nil, err
	}

	s.metrics.IncExport("csv")

	return &CSVExport{
		Filename: export.TripsCSVFilename(s.now()),
		Data:     buf.Bytes(),
		Count:    len(trips),
	}, nil
}
