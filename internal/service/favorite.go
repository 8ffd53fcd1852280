package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kmtracker/kmtracker/internal/metrics"
	"github.com/kmtracker/kmtracker/internal/model"
	"github.com/kmtracker/kmtracker/internal/repository"
)

// FavoriteStore persists favorites. *repository.Repository satisfies it.
type FavoriteStore interface {
	CreateFavorite(ctx context.Context, fav *model.Favorite) error
	ListFavorites(ctx context.Context, ownerID string) ([]*model.Favorite, error)
	FavoriteAddressExists(ctx context.Context, ownerID, address string) (bool, error)
	DeleteFavorite(ctx context.Context, id, ownerID string) error
}

// FavoriteService manages saved addresses.
type FavoriteService struct {
	store   FavoriteStore
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(store FavoriteStore, recorder metrics.Recorder, logger *slog.Logger) *FavoriteService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoriteService{store: store, metrics: recorder, logger: logger, now: time.Now}
}

// CreateFavoriteInput defines input for saving a favorite.
type CreateFavoriteInput struct {
	OwnerID string
	Label   string
	Address string
}

// List returns the owner's favorites, newest first.
func (s *FavoriteService) List(ctx context.Context, ownerID string) ([]*model.Favorite, error) {
	favs, err := s.store.ListFavorites(ctx, ownerID)
	if err != nil {
		s.logger.Error("favorite_list_failed", "owner_id", ownerID, "error", err)
		return nil, backend("list favorites", err)
	}
	return favs, nil
}

// Create saves a favorite. The address is trimmed, an empty label falls back
// to the part of the address before the first comma, and an address the
// owner already saved (ignoring case and surrounding space) is rejected.
func (s *FavoriteService) Create(ctx context.Context, input CreateFavoriteInput) (*model.Favorite, error) {
	address, err := cleanAddress("address", input.Address)
	if err != nil {
		return nil, err
	}
	label, err := cleanText("label", input.Label, MaxLabelLength, false, false)
	if err != nil {
		return nil, err
	}
	if label == "" {
		label = model.DefaultLabel(address)
	}

	exists, err := s.store.FavoriteAddressExists(ctx, input.OwnerID, address)
	if err != nil {
		s.logger.Error("favorite_check_failed", "owner_id", input.OwnerID, "error", err)
		return nil, backend("check favorite", err)
	}
	if exists {
		return nil, ErrFavoriteExists
	}

	fav := &model.Favorite{
		ID:        newID(),
		OwnerID:   input.OwnerID,
		Label:     label,
		Address:   address,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.CreateFavorite(ctx, fav); err != nil {
		if errors.Is(err, repository.ErrFavoriteExists) {
			return nil, ErrFavoriteExists
		}
		s.logger.Error("favorite_save_failed", "owner_id", input.OwnerID, "error", err)
		return nil, backend("create favorite", err)
	}

	s.metrics.IncFavoriteCreated()
	return fav, nil
}

// Delete removes one of the owner's favorites.
func (s *FavoriteService) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteFavorite(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrFavoriteNotFound) {
			return ErrFavoriteNotFound
		}
		s.logger.Error("favorite_delete_failed", "favorite_id", id, "error", err)
		return backend("delete favorite", err)
	}

	s.metrics.IncFavoriteDeleted()
	return nil
}
