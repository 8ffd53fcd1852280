package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kmtracker/kmtracker/internal/distance"
	"github.com/kmtracker/kmtracker/internal/model"
	"github.com/kmtracker/kmtracker/internal/repository"
)

var errDown = errors.New("connection refused")

// memStore is an in-memory stand-in for *repository.Repository.
type memStore struct {
	mu        sync.Mutex
	trips     map[string]*model.Trip
	favorites map[string]*model.Favorite
	addresses map[string]*model.UserAddress
	users     map[string]*model.User
	fail      bool
}

func newMemStore() *memStore {
	return &memStore{
		trips:     make(map[string]*model.Trip),
		favorites: make(map[string]*model.Favorite),
		addresses: make(map[string]*model.UserAddress),
		users:     make(map[string]*model.User),
	}
}

func (m *memStore) CreateTrip(ctx context.Context, trip *model.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errDown
	}
	m.trips[trip.ID] = trip
	return nil
}

func (m *memStore) ListTrips(ctx context.Context, ownerID string) ([]*model.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errDown
	}
	out := make([]*model.Trip, 0)
	for _, t := range m.trips {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memStore) DeleteTrip(ctx context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errDown
	}
	t, ok := m.trips[id]
	if !ok || t.OwnerID != ownerID {
		return repository.ErrTripNotFound
	}
	delete(m.trips, id)
	return nil
}

func (m *memStore) CreateFavorite(ctx context.Context, fav *model.Favorite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errDown
	}
	for _, f := range m.favorites {
		if f.OwnerID == fav.OwnerID && model.AddressKey(f.Address) == model.AddressKey(fav.Address) {
			return repository.ErrFavoriteExists
		}
	}
	m.favorites[fav.ID] = fav
	return nil
}

func (m *memStore) ListFavorites(ctx context.Context, ownerID string) ([]*model.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errDown
	}
	out := make([]*model.Favorite, 0)
	for _, f := range m.favorites {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memStore) FavoriteAddressExists(ctx context.Context, ownerID, address string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return false, errDown
	}
	for _, f := range m.favorites {
		if f.OwnerID == ownerID && model.AddressKey(f.Address) == model.AddressKey(address) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) DeleteFavorite(ctx context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.favorites[id]
	if !ok || f.OwnerID != ownerID {
		return repository.ErrFavoriteNotFound
	}
	delete(m.favorites, id)
	return nil
}

func (m *memStore) GetDefaultAddress(ctx context.Context, ownerID, addressType string) (*model.UserAddress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errDown
	}
	a, ok := m.addresses[ownerID+"|"+addressType]
	if !ok {
		return nil, repository.ErrAddressNotFound
	}
	return a, nil
}

func (m *memStore) UpsertDefaultAddress(ctx context.Context, addr *model.UserAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errDown
	}
	key := addr.OwnerID + "|" + addr.AddressType
	if existing, ok := m.addresses[key]; ok {
		addr.ID = existing.ID
		addr.CreatedAt = existing.CreatedAt
	}
	stored := *addr
	m.addresses[key] = &stored
	return nil
}

func (m *memStore) DeleteDefaultAddress(ctx context.Context, ownerID, addressType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ownerID + "|" + addressType
	if _, ok := m.addresses[key]; !ok {
		return repository.ErrAddressNotFound
	}
	delete(m.addresses, key)
	return nil
}

func (m *memStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrEmailExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

type stubResolver struct {
	result distance.Result
	err    error
}

func (s stubResolver) Resolve(ctx context.Context, origin, destination string) (distance.Result, error) {
	if distance.Normalize(origin) == "" || distance.Normalize(destination) == "" {
		return distance.Result{}, distance.ErrInvalidAddress
	}
	return s.result, s.err
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
