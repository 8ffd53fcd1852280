// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/kmtracker/kmtracker/internal/model"
	"github.com/kmtracker/kmtracker/internal/report"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents an account in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CreateTripRequest represents the request body for recording a trip.
type CreateTripRequest struct {
	Date         string `json:"date,omitempty"`
	StartAddress string `json:"start_address"`
	EndAddress   string `json:"end_address"`
	Purpose      string `json:"purpose,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// TripResponse represents a trip in API responses.
type TripResponse struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	StartAddress string    `json:"start_address"`
	EndAddress   string    `json:"end_address"`
	Km           float64   `json:"km"`
	Duration     string    `json:"duration"`
	Purpose      string    `json:"purpose"`
	Notes        string    `json:"notes"`
	Estimated    bool      `json:"estimated"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateTripResponse is the saved trip plus the estimate warning, if any.
type CreateTripResponse struct {
	Trip    TripResponse `json:"trip"`
	Warning string       `json:"warning,omitempty"`
	Detail  string       `json:"detail,omitempty"`
}

// TripListResponse represents a list of trips.
type TripListResponse struct {
	Data []TripResponse `json:"data"`
}

// ReportResponse represents a report summary.
type ReportResponse struct {
	Period  string         `json:"period"`
	From    string         `json:"from,omitempty"`
	To      string         `json:"to,omitempty"`
	Count   int            `json:"count"`
	TotalKm float64        `json:"total_km"`
	Trips   []TripResponse `json:"trips"`
}

// FavoriteRequest represents the request body for saving a favorite.
type FavoriteRequest struct {
	Label   string `json:"label,omitempty"`
	Address string `json:"address"`
}

// FavoriteListResponse represents a list of favorites.
type FavoriteListResponse struct {
	Data []*model.Favorite `json:"data"`
}

// HomeAddressRequest represents the request body for setting the home address.
type HomeAddressRequest struct {
	Address string `json:"address"`
}

// HomeAddressResponse represents the home address.
type HomeAddressResponse struct {
	Address   string    `json:"address"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapsStatusResponse reports the loader state.
type MapsStatusResponse struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Attempts int    `json:"attempts"`
}

// PlaceLabelResponse is the address string stored for a place selection.
type PlaceLabelResponse struct {
	Label string `json:"label"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// ToTripResponse converts a Trip model to TripResponse DTO.
func ToTripResponse(t *model.Trip) TripResponse {
	return TripResponse{
		ID:           t.ID,
		Date:         t.DateString(),
		StartAddress: t.StartAddress,
		EndAddress:   t.EndAddress,
		Km:           t.Km,
		Duration:     t.Duration,
		Purpose:      t.Purpose,
		Notes:        t.Notes,
		Estimated:    t.Estimated,
		CreatedAt:    t.CreatedAt,
	}
}

// ToTripListResponse converts a slice of Trip models.
func ToTripListResponse(trips []*model.Trip) *TripListResponse {
	data := make([]TripResponse, len(trips))
	for i, t := range trips {
		data[i] = ToTripResponse(t)
	}
	return &TripListResponse{Data: data}
}

// ToReportResponse converts a report summary.
func ToReportResponse(period string, s *report.Summary) *ReportResponse {
	if period == "" {
		period = string(report.PeriodAll)
	}
	resp := &ReportResponse{
		Period:  period,
		Count:   s.Count,
		TotalKm: model.RoundKm(s.TotalKm),
		Trips:   ToTripListResponse(s.Trips).Data,
	}
	if s.From != nil {
		resp.From = s.From.Format(model.DateLayout)
	}
	if s.To != nil {
		resp.To = s.To.Format(model.DateLayout)
	}
	return resp
}

// ToFavoriteListResponse wraps favorites, never returning a null list.
func ToFavoriteListResponse(favs []*model.Favorite) *FavoriteListResponse {
	if favs == nil {
		favs = []*model.Favorite{}
	}
	return &FavoriteListResponse{Data: favs}
}
