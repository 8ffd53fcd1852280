package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kmtracker/kmtracker/internal/handler/dto"
	"github.com/kmtracker/kmtracker/internal/maps"
)

// SDKLoader is satisfied by *maps.Loader.
type SDKLoader interface {
	EnsureLoaded(ctx context.Context) error
	Status() maps.Status
}

// DistanceSwitch is satisfied by *distance.Resolver.
type DistanceSwitch interface {
	Broken() bool
	Reset()
}

// Distance modes reported by Config.
const (
	distanceModeMaps      = "maps"
	distanceModeEstimated = "estimated"
)

// MapsHandler exposes the SDK configuration and the shared loader.
type MapsHandler struct {
	client   maps.ClientConfig
	loader   SDKLoader
	distance DistanceSwitch
	logger   *slog.Logger
}

// NewMapsHandler creates a new MapsHandler. loader is nil when no API key is
// configured. A successful Load re-enables distance lookups on distance.
func NewMapsHandler(client maps.ClientConfig, loader SDKLoader, distance DistanceSwitch, logger *slog.Logger) *MapsHandler {
	return &MapsHandler{client: client, loader: loader, distance: distance, logger: logger}
}

type mapsConfigResponse struct {
	maps.ClientConfig
	Status   string `json:"status"`
	Distance string `json:"distance"`
}

// Config handles GET /api/v1/maps/config.
func (h *MapsHandler) Config(w http.ResponseWriter, r *http.Request) {
	status := "disabled"
	mode := distanceModeEstimated
	if h.loader != nil {
		status = h.loader.Status().State.String()
		if h.distance == nil || !h.distance.Broken() {
			mode = distanceModeMaps
		}
	}
	writeJSON(w, http.StatusOK, mapsConfigResponse{ClientConfig: h.client, Status: status, Distance: mode})
}

// Load handles POST /api/v1/maps/load.
func (h *MapsHandler) Load(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil {
		writeError(w, http.StatusServiceUnavailable, "MAPS_DISABLED", "Google Maps API key is not configured")
		return
	}

	err := h.loader.EnsureLoaded(r.Context())
	st := h.loader.Status()
	if err == nil {
		if h.distance != nil && h.distance.Broken() {
			h.distance.Reset()
			h.logger.Info("maps_distance_reenabled", "attempts", st.Attempts)
		}
		writeJSON(w, http.StatusOK, dto.MapsStatusResponse{Status: st.State.String(), Attempts: st.Attempts})
		return
	}

	var le *maps.LoadError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "MAPS_LOAD_TIMEOUT", "Timed out waiting for Google Maps")
	case errors.Is(err, maps.ErrAuthRestriction) && errors.As(err, &le):
		writeError(w, http.StatusBadGateway, "MAPS_AUTH_RESTRICTED", le.Message)
	case errors.As(err, &le):
		writeError(w, http.StatusBadGateway, "MAPS_SCRIPT_LOAD_FAILED", le.Message)
	default:
		h.logger.Error("maps_load_error", "error", err)
		writeError(w, http.StatusBadGateway, "MAPS_SCRIPT_LOAD_FAILED", err.Error())
	}
}

// PlaceLabel handles POST /api/v1/maps/place-label.
func (h *MapsHandler) PlaceLabel(w http.ResponseWriter, r *http.Request) {
	var place maps.Place
	if !decodeJSON(w, r, &place) {
		return
	}

	label := maps.PlaceLabel(place)
	if label == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "formatted_address is required")
		return
	}
	writeJSON(w, http.StatusOK, dto.PlaceLabelResponse{Label: label})
}
