package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kmtracker/kmtracker/internal/auth"
	"github.com/kmtracker/kmtracker/internal/export"
	"github.com/kmtracker/kmtracker/internal/service"
)

// BackupService is satisfied by *service.BackupService.
type BackupService interface {
	Export(ctx context.Context, ownerID string) (*service.BackupExport, error)
	ExportTripsCSV(ctx context.Context, ownerID string) (*service.CSVExport, error)
}

// BackupHandler serves the JSON account backup and the full trip log.
type BackupHandler struct {
	svc    BackupService
	logger *slog.Logger
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(svc BackupService, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{svc: svc, logger: logger}
}

// Download handles GET /api/v1/backup.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Export(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBackup(&buf, out.Backup); err != nil {
		h.logger.Error("backup_encode_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	attachment(w, "application/json", out.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// TripsCSV handles GET /api/v1/backup/trips.csv.
func (h *BackupHandler) TripsCSV(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ExportTripsCSV(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	attachment(w, export.CSVContentType, out.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

func (h *BackupHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
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
