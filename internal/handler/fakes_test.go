package handler

import (
	"context"
	"sync"

	"github.com/kmtracker/kmtracker/internal/maps"
	"github.com/kmtracker/kmtracker/internal/model"
	"github.com/kmtracker/kmtracker/internal/report"
	"github.com/kmtracker/kmtracker/internal/service"
)

type fakeTripService struct {
	lastInput  service.CreateTripInput
	lastReport service.ReportInput
	out        *service.CreateTripOutput
	trips      []*model.Trip
	summary    *report.Summary
	csv        *service.CSVExport
	err        error
}

func (f *fakeTripService) CreateTrip(ctx context.Context, input service.CreateTripInput) (*service.CreateTripOutput, error) {
	f.lastInput = input
	return f.out, f.err
}

func (f *fakeTripService) ListTrips(ctx context.Context, ownerID string) ([]*model.Trip, error) {
	return f.trips, f.err
}

func (f *fakeTripService) DeleteTrip(ctx context.Context, id, ownerID string) error {
	return f.err
}

func (f *fakeTripService) Report(ctx context.Context, input service.ReportInput) (*report.Summary, error) {
	f.lastReport = input
	return f.summary, f.err
}

func (f *fakeTripService) ExportCSV(ctx context.Context, input service.ReportInput) (*service.CSVExport, error) {
	f.lastReport = input
	return f.csv, f.err
}

type fakeLoader struct {
	mu     sync.Mutex
	calls  int
	err    error
	status maps.Status
}

func (f *fakeLoader) EnsureLoaded(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeLoader) Status() maps.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

type fakeDistance struct {
	mu     sync.Mutex
	broken bool
	resets int
}

func (f *fakeDistance) Broken() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.broken
}

func (f *fakeDistance) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broken = false
	f.resets++
}
