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

// AddressStore persists default addresses. *repository.Repository satisfies it.
type AddressStore interface {
	GetDefaultAddress(ctx context.Context, ownerID, addressType string) (*model.UserAddress, error)
	UpsertDefaultAddress(ctx context.Context, addr *model.UserAddress) error
	DeleteDefaultAddress(ctx context.Context, ownerID, addressType string) error
}

// AddressService manages the home address and notifies subscribers of changes.
type AddressService struct {
	store   AddressStore
	broker  *HomeAddressBroker
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewAddressService creates a new AddressService. A nil broker gets a fresh one.
func NewAddressService(store AddressStore, broker *HomeAddressBroker, recorder metrics.Recorder, logger *slog.Logger) *AddressService {
	if broker == nil {
		broker = NewHomeAddressBroker(DefaultSubscriberBuffer)
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AddressService{store: store, broker: broker, metrics: recorder, logger: logger, now: time.Now}
}

// GetHome returns the owner's home address.
func (s *AddressService) GetHome(ctx context.Context, ownerID string) (*model.UserAddress, error) {
	addr, err := s.store.GetDefaultAddress(ctx, ownerID, model.AddressTypeHome)
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, ErrHomeAddressNotFound
		}
		s.logger.Error("home_address_load_failed", "owner_id", ownerID, "error", err)
		return nil, backend("get home address", err)
	}
	return addr, nil
}

// SetHome stores the owner's home address, replacing any previous one.
func (s *AddressService) SetHome(ctx context.Context, ownerID, address string) (*model.UserAddress, error) {
	address, err := cleanAddress("address", address)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	addr := &model.UserAddress{
		ID:          newID(),
		OwnerID:     ownerID,
		AddressType: model.AddressTypeHome,
		Address:     address,
		IsDefault:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.UpsertDefaultAddress(ctx, addr); err != nil {
		s.logger.Error("home_address_save_failed", "owner_id", ownerID, "error", err)
		return nil, backend("save home address", err)
	}

	s.publish(ownerID, address, now)
	return addr, nil
}

// ClearHome removes the owner's home address. Clearing an unset address is a no-op.
func (s *AddressService) ClearHome(ctx context.Context, ownerID string) error {
	if err := s.store.DeleteDefaultAddress(ctx, ownerID, model.AddressTypeHome); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil
		}
		s.logger.Error("home_address_clear_failed", "owner_id", ownerID, "error", err)
		return backend("clear home address", err)
	}

	s.publish(ownerID, "", s.now().UTC())
	return nil
}

// Subscribe registers for changes to the owner's home address.
func (s *AddressService) Subscribe(ownerID string) (<-chan model.HomeAddressChanged, func()) {
	return s.broker.Subscribe(ownerID)
}

func (s *AddressService) publish(ownerID, address string, at time.Time) {
	s.metrics.IncHomeAddressChanged()
	n := s.broker.Publish(model.HomeAddressChanged{
		OwnerID:   ownerID,
		Address:   address,
		ChangedAt: at,
	})
	s.logger.Debug("home_address_changed", "owner_id", ownerID, "subscribers", n)
}
