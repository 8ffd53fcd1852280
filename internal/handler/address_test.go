package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kmtracker/kmtracker/internal/auth"
	"github.com/kmtracker/kmtracker/internal/handler/dto"
	"github.com/kmtracker/kmtracker/internal/model"
	"github.com/kmtracker/kmtracker/internal/service"
)

type fakeAddressService struct {
	broker *service.HomeAddressBroker
	home   *model.UserAddress
	err    error
}

func newFakeAddressService() *fakeAddressService {
	return &fakeAddressService{broker: service.NewHomeAddressBroker(4)}
}

func (f *fakeAddressService) GetHome(ctx context.Context, ownerID string) (*model.UserAddress, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.home == nil {
		return nil, service.ErrHomeAddressNotFound
	}
	return f.home, nil
}

func (f *fakeAddressService) SetHome(ctx context.Context, ownerID, address string) (*model.UserAddress, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.home = &model.UserAddress{OwnerID: ownerID, Address: address, UpdatedAt: time.Now()}
	f.broker.Publish(model.HomeAddressChanged{OwnerID: ownerID, Address: address})
	return f.home, nil
}

func (f *fakeAddressService) ClearHome(ctx context.Context, ownerID string) error {
	f.home = nil
	return f.err
}

func (f *fakeAddressService) Subscribe(ownerID string) (<-chan model.HomeAddressChanged, func()) {
	return f.broker.Subscribe(ownerID)
}

func TestAddressHandler_GetSetClear(t *testing.T) {
	svc := newFakeAddressService()
	h := NewAddressHandler(svc, testLogger(), 0)

	rec := httptest.NewRecorder()
	h.GetHome(rec, authedRequest(http.MethodGet, "/addresses/home", "u1", nil))
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Code != "HOME_ADDRESS_NOT_SET" {
		t.Fatalf("unset home status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.SetHome(rec, authedRequest(http.MethodPut, "/addresses/home", "u1", dto.HomeAddressRequest{Address: "5 Elm Ave"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d", rec.Code)
	}
	var resp dto.HomeAddressResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Address != "5 Elm Ave" {
		t.Errorf("address = %q", resp.Address)
	}

	rec = httptest.NewRecorder()
	h.ClearHome(rec, authedRequest(http.MethodDelete, "/addresses/home", "u1", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("clear status = %d", rec.Code)
	}
}

func TestAddressHandler_Events(t *testing.T) {
	svc := newFakeAddressService()
	h := NewAddressHandler(svc, testLogger(), time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.ContextWithAuth(r.Context(), &model.AuthContext{UserID: "u1"})
		h.Events(w, r.WithContext(ctx))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	if line, _ := reader.ReadString('\n'); line != ": connected\n" {
		t.Fatalf("first line = %q", line)
	}

	for svc.broker.Subscribers("u1") == 0 {
		time.Sleep(time.Millisecond)
	}
	svc.broker.Publish(model.HomeAddressChanged{OwnerID: "u2", Address: "not mine"})
	svc.broker.Publish(model.HomeAddressChanged{OwnerID: "u1", Address: "7 Oak Ave"})

	var event, data string
	for data == "" {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}

	if event != "home-address" {
		t.Errorf("event = %q", event)
	}
	var ev model.HomeAddressChanged
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Address != "7 Oak Ave" {
		t.Errorf("address = %q", ev.Address)
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for svc.broker.Subscribers("u1") != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := svc.broker.Subscribers("u1"); n != 0 {
		t.Errorf("subscription leaked after disconnect: %d", n)
	}
}
