package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kmtracker/kmtracker/internal/auth"
	"github.com/kmtracker/kmtracker/internal/handler/dto"
	"github.com/kmtracker/kmtracker/internal/model"
	"github.com/kmtracker/kmtracker/internal/service"
)

// FavoriteService is satisfied by *service.FavoriteService.
type FavoriteService interface {
	List(ctx context.Context, ownerID string) ([]*model.Favorite, error)
	Create(ctx context.Context, input service.CreateFavoriteInput) (*model.Favorite, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// FavoriteHandler handles saved addresses.
type FavoriteHandler struct {
	svc    FavoriteService
	logger *slog.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(svc FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/favorites.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	favs, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToFavoriteListResponse(favs))
}

// Create handles POST /api/v1/favorites.
func (h *FavoriteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.FavoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fav, err := h.svc.Create(r.Context(), service.CreateFavoriteInput{
		OwnerID: auth.UserIDFromContext(r.Context()),
		Label:   req.Label,
		Address: req.Address,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("favorite_created", "favorite_id", fav.ID)
	writeJSON(w, http.StatusCreated, fav)
}

// Delete handles DELETE /api/v1/favorites/{id}.
func (h *FavoriteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Favorite ID is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id, auth.UserIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("favorite_deleted", "favorite_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", inputMessage(err))
	case errors.Is(err, service.ErrFavoriteExists):
		writeError(w, http.StatusConflict, "FAVORITE_EXISTS", service.ErrFavoriteExists.Error())
	case errors.Is(err, service.ErrFavoriteNotFound):
		writeError(w, http.StatusNotFound, "FAVORITE_NOT_FOUND", "Favorite not found")
	case errors.Is(err, service.ErrBackendOperation):
		h.logger.Error("backend_error", "error", err)
		writeError(w, http.StatusInternalServerError, "BACKEND_ERROR", "Could not complete the request, please try again")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
