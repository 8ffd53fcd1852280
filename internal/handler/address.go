package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kmtracker/kmtracker/internal/auth"
	"github.com/kmtracker/kmtracker/internal/handler/dto"
	"github.com/kmtracker/kmtracker/internal/model"
	"github.com/kmtracker/kmtracker/internal/service"
)

// DefaultHeartbeat is the idle interval between SSE keep-alive comments.
const DefaultHeartbeat = 25 * time.Second

// AddressService is satisfied by *service.AddressService.
type AddressService interface {
	GetHome(ctx context.Context, ownerID string) (*model.UserAddress, error)
	SetHome(ctx context.Context, ownerID, address string) (*model.UserAddress, error)
	ClearHome(ctx context.Context, ownerID string) error
	Subscribe(ownerID string) (<-chan model.HomeAddressChanged, func())
}

// AddressHandler handles the home address and its change stream.
type AddressHandler struct {
	svc       AddressService
	logger    *slog.Logger
	heartbeat time.Duration
}

// NewAddressHandler creates a new AddressHandler. A non-positive heartbeat
// uses DefaultHeartbeat.
func NewAddressHandler(svc AddressService, logger *slog.Logger, heartbeat time.Duration) *AddressHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &AddressHandler{svc: svc, logger: logger, heartbeat: heartbeat}
}

// GetHome handles GET /api/v1/addresses/home.
func (h *AddressHandler) GetHome(w http.ResponseWriter, r *http.Request) {
	addr, err := h.svc.GetHome(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.HomeAddressResponse{Address: addr.Address, UpdatedAt: addr.UpdatedAt})
}

// SetHome handles PUT /api/v1/addresses/home.
func (h *AddressHandler) SetHome(w http.ResponseWriter, r *http.Request) {
	var req dto.HomeAddressRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	addr, err := h.svc.SetHome(r.Context(), auth.UserIDFromContext(r.Context()), req.Address)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.HomeAddressResponse{Address: addr.Address, UpdatedAt: addr.UpdatedAt})
}

// ClearHome handles DELETE /api/v1/addresses/home.
func (h *AddressHandler) ClearHome(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearHome(r.Context(), auth.UserIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Events handles GET /api/v1/addresses/home/events as a server-sent event
// stream. Each change is sent as a "home-address" event until the client
// disconnects.
func (h *AddressHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "Streaming is not supported")
		return
	}

	// The stream outlives the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	ownerID := auth.UserIDFromContext(r.Context())
	events, cancel := h.svc.Subscribe(ownerID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("event_encode_failed", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: home-address\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *AddressHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", inputMessage(err))
	case errors.Is(err, service.ErrHomeAddressNotFound):
		writeError(w, http.StatusNotFound, "HOME_ADDRESS_NOT_SET", "Home address not set")
	case errors.Is(err, service.ErrBackendOperation):
		h.logger.Error("backend_error", "error", err)
		writeError(w, http.StatusInternalServerError, "BACKEND_ERROR", "Could not complete the request, please try again")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
