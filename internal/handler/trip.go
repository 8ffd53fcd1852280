package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kmtracker/kmtracker/internal/auth"
	"github.com/kmtracker/kmtracker/internal/export"
	"github.com/kmtracker/kmtracker/internal/handler/dto"
	"github.com/kmtracker/kmtracker/internal/model"
	"github.com/kmtracker/kmtracker/internal/report"
	"github.com/kmtracker/kmtracker/internal/service"
)

// TripService is satisfied by *service.TripService.
type TripService interface {
	CreateTrip(ctx context.Context, input service.CreateTripInput) (*service.CreateTripOutput, error)
	ListTrips(ctx context.Context, ownerID string) ([]*model.Trip, error)
	DeleteTrip(ctx context.Context, id, ownerID string) error
	Report(ctx context.Context, input service.ReportInput) (*report.Summary, error)
	ExportCSV(ctx context.Context, input service.ReportInput) (*service.CSVExport, error)
}

// TripHandler handles trips and reports.
type TripHandler struct {
	svc    TripService
	logger *slog.Logger
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(svc TripService, logger *slog.Logger) *TripHandler {
	return &TripHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/trips.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.CreateTrip(r.Context(), service.CreateTripInput{
		OwnerID:      auth.UserIDFromContext(r.Context()),
		Date:         req.Date,
		StartAddress: req.StartAddress,
		EndAddress:   req.EndAddress,
		Purpose:      req.Purpose,
		Notes:        req.Notes,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("trip_created",
		"trip_id", out.Trip.ID,
		"km", out.Trip.Km,
		"estimated", out.Trip.Estimated,
	)

	writeJSON(w, http.StatusCreated, dto.CreateTripResponse{
		Trip:    dto.ToTripResponse(out.Trip),
		Warning: out.Warning,
		Detail:  out.Detail,
	})
}

// List handles GET /api/v1/trips.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, err := h.svc.ListTrips(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToTripListResponse(trips))
}

// Delete handles DELETE /api/v1/trips/{id}.
func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Trip ID is required")
		return
	}

	if err := h.svc.DeleteTrip(r.Context(), id, auth.UserIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("trip_deleted", "trip_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Report handles GET /api/v1/reports.
func (h *TripHandler) Report(w http.ResponseWriter, r *http.Request) {
	input := reportInput(r)

	summary, err := h.svc.Report(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToReportResponse(input.Period, summary))
}

// ExportCSV handles GET /api/v1/reports/export.csv.
func (h *TripHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ExportCSV(r.Context(), reportInput(r))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	attachment(w, export.CSVContentType, out.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

func reportInput(r *http.Request) service.ReportInput {
	q := r.URL.Query()
	return service.ReportInput{
		OwnerID: auth.UserIDFromContext(r.Context()),
		Period:  q.Get("period"),
		From:    q.Get("from"),
		To:      q.Get("to"),
	}
}

// handleServiceError maps service errors to HTTP responses.
func (h *TripHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", inputMessage(err))
	case errors.Is(err, service.ErrTripNotFound):
		writeError(w, http.StatusNotFound, "TRIP_NOT_FOUND", "Trip not found")
	case errors.Is(err, export.ErrNoTrips):
		writeError(w, http.StatusNotFound, "NO_TRIPS", "No trips to export")
	case errors.Is(err, service.ErrBackendOperation):
		h.logger.Error("backend_error", "error", err)
		writeError(w, http.StatusInternalServerError, "BACKEND_ERROR", "Could not complete the request, please try again")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// inputMessage strips the sentinel prefix from a validation error.
func inputMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, service.ErrInvalidInput.Error()+": "); i >= 0 {
		msg = msg[i+len(service.ErrInvalidInput.Error())+2:]
	}
	return msg
}
