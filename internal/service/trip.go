package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kmtracker/kmtracker/internal/distance"
	"github.com/kmtracker/kmtracker/internal/export"
	"github.com/kmtracker/kmtracker/internal/metrics"
	"github.com/kmtracker/kmtracker/internal/model"
	"github.com/kmtracker/kmtracker/internal/report"
	"github.com/kmtracker/kmtracker/internal/repository"
)

// TripStore persists trips. *repository.Repository satisfies it.
type TripStore interface {
	CreateTrip(ctx context.Context, trip *model.Trip) error
	ListTrips(ctx context.Context, ownerID string) ([]*model.Trip, error)
	DeleteTrip(ctx context.Context, id, ownerID string) error
}

// DistanceResolver is satisfied by *distance.Resolver.
type DistanceResolver interface {
	Resolve(ctx context.Context, origin, destination string) (distance.Result, error)
}

// TripService handles trip recording, reporting and export.
type TripService struct {
	store    TripStore
	resolver DistanceResolver
	metrics  metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewTripService creates a new TripService.
func NewTripService(store TripStore, resolver DistanceResolver, recorder metrics.Recorder, logger *slog.Logger) *TripService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TripService{
		store:    store,
		resolver: resolver,
		metrics:  recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateTripInput defines input for recording a trip.
type CreateTripInput struct {
	OwnerID      string
	Date         string // YYYY-MM-DD; empty means today
	StartAddress string
	EndAddress   string
	Purpose      string
	Notes        string
}

// CreateTripOutput is the saved trip plus any estimate warning.
type CreateTripOutput struct {
	Trip    *model.Trip
	Warning string
	Detail  string
}

// CreateTrip resolves the distance between the two addresses and saves the trip.
func (s *TripService) CreateTrip(ctx context.Context, input CreateTripInput) (*CreateTripOutput, error) {
	date := s.today()
	if input.Date != "" {
		d, err := model.ParseDate(input.Date)
		if err != nil {
			return nil, invalid("date must be YYYY-MM-DD")
		}
		date = d
	}

	start, err := cleanAddress("start address", input.StartAddress)
	if err != nil {
		return nil, err
	}
	end, err := cleanAddress("end address", input.EndAddress)
	if err != nil {
		return nil, err
	}
	purpose, err := cleanText("purpose", input.Purpose, MaxPurposeLength, false, false)
	if err != nil {
		return nil, err
	}
	notes, err := cleanText("notes", input.Notes, MaxNotesLength, false, true)
	if err != nil {
		return nil, err
	}

	res, err := s.resolver.Resolve(ctx, start, end)
	if err != nil {
		if errors.Is(err, distance.ErrInvalidAddress) {
			return nil, invalid("start and end address are required")
		}
		return nil, err
	}
	// Matrix distances under 50 m round to zero.
	if res.Km <= 0 {
		return nil, invalid("start and end address resolve to the same place")
	}

	trip := &model.Trip{
		ID:           newID(),
		OwnerID:      input.OwnerID,
		Date:         date,
		StartAddress: start,
		EndAddress:   end,
		Km:           res.Km,
		Duration:     res.Duration,
		Purpose:      purpose,
		Notes:        notes,
		Estimated:    res.Estimated,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.store.CreateTrip(ctx, trip); err != nil {
		s.logger.Error("trip_save_failed",
			"owner_id", input.OwnerID,
			"error", err,
		)
		return nil, backend("create trip", err)
	}

	s.metrics.IncTripCreated(trip.Estimated)

	return &CreateTripOutput{Trip: trip, Warning: res.Warning, Detail: res.Detail}, nil
}

// ListTrips returns the owner's trips, newest date first.
func (s *TripService) ListTrips(ctx context.Context, ownerID string) ([]*model.Trip, error) {
	trips, err := s.store.ListTrips(ctx, ownerID)
	if err != nil {
		s.logger.Error("trip_list_failed", "owner_id", ownerID, "error", err)
		return nil, backend("list trips", err)
	}
	return trips, nil
}

// DeleteTrip deletes one of the owner's trips.
func (s *TripService) DeleteTrip(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteTrip(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return ErrTripNotFound
		}
		s.logger.Error("trip_delete_failed", "trip_id", id, "error", err)
		return backend("delete trip", err)
	}

	s.metrics.IncTripDeleted()
	return nil
}

// ReportInput selects the trips of a report. From and To are YYYY-MM-DD and
// only used by the custom period.
type ReportInput struct {
	OwnerID string
	Period  string
	From    string
	To      string
}

// Report aggregates the owner's trips over the selected period.
func (s *TripService) Report(ctx context.Context, input ReportInput) (*report.Summary, error) {
	sel, err := parseSelector(input)
	if err != nil {
		return nil, err
	}

	trips, err := s.ListTrips(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	summary, err := report.Aggregate(trips, sel, s.today())
	if err != nil {
		return nil, invalid("%v", err)
	}
	return summary, nil
}

// CSVExport is a rendered CSV report.
type CSVExport struct {
	Filename string
	Data     []byte
	Count    int
}

// ExportCSV renders the report for the selected period as CSV. An empty
// selection returns export.ErrNoTrips.
func (s *TripService) ExportCSV(ctx context.Context, input ReportInput) (*CSVExport, error) {
	summary, err := s.Report(ctx, input)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, summary.Trips); err != nil {
		return nil, err
	}

	s.metrics.IncExport("csv")

	return &CSVExport{
		Filename: export.CSVFilename(s.today()),
		Data:     buf.Bytes(),
		Count:    summary.Count,
	}, nil
}

func parseSelector(input ReportInput) (report.Selector, error) {
	period, err := report.ParsePeriod(input.Period)
	if err != nil {
		return report.Selector{}, invalid("period must be one of all, this-month, custom")
	}

	sel := report.Selector{Period: period}
	if period != report.PeriodCustom {
		return sel, nil
	}

	for _, b := range []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"from", input.From, &sel.From},
		{"to", input.To, &sel.To},
	} {
		if b.raw == "" {
			continue
		}
		d, err := model.ParseDate(b.raw)
		if err != nil {
			return report.Selector{}, invalid("%s must be YYYY-MM-DD", b.name)
		}
		*b.dst = &d
	}

	return sel, nil
}

// today is the current calendar date in UTC, the zone trip dates are stored in.
func (s *TripService) today() time.Time {
	return model.CalendarDate(s.now().UTC())
}
