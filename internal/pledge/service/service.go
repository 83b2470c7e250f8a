// Package service implements the pledge ledger's write path and the
// aggregation read paths over the store adapter.
package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"pledgeboard/internal/country"
	"pledgeboard/internal/pledge/models"
	"pledgeboard/internal/pledge/store"
	dErrors "pledgeboard/pkg/domain-errors"
)

// Hours bounds on a single pledge.
const (
	MinHours = 0.0
	MaxHours = 10.0
)

// Service validates pledges, delegates the atomic write to the store, and
// reconstructs the summary and recent views. It holds no locks of its own;
// atomicity is the store's concern.
type Service struct {
	catalog *country.Catalog
	store   store.Store
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates the pledge service.
func New(catalog *country.Catalog, st store.Store, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		store:   st,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Record validates and records one pledge. Preconditions run in order before
// any store mutation; the write itself is a single atomic batch. Bot
// verification is the caller's responsibility, upstream of this call.
//
// Submitting the same token twice overwrites the record fields but increments
// the aggregates again. The at-most-once-per-token assumption sits with the
// caller; do not dedupe here.
func (s *Service) Record(ctx context.Context, token, countryID string, hours float64) error {
	if !s.catalog.IsValid(countryID) {
		return dErrors.New(dErrors.CodeInvalidCountry, "country is invalid")
	}
	if hours < MinHours || hours > MaxHours {
		return dErrors.New(dErrors.CodeHoursOutOfRange, "hours must be >= 0 and <= 10")
	}

	return s.store.RecordPledge(ctx, models.Pledge{
		Token:     token,
		Country:   countryID,
		Hours:     hours,
		Timestamp: s.now(),
	})
}

// Summary returns one entry per country with at least one pledge, sorted
// ascending by cumulative hours. Ties keep the catalog's stable id order.
func (s *Service) Summary(ctx context.Context) ([]models.SummaryEntry, error) {
	ids := s.catalog.IDs()
	aggregates, err := s.store.Aggregates(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]models.SummaryEntry, 0, len(aggregates))
	for _, id := range ids {
		aggregate, ok := aggregates[id]
		if !ok {
			continue
		}
		entries = append(entries, models.SummaryEntry{
			Country: id,
			Hours:   aggregate.Hours,
			Count:   aggregate.Count,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Hours < entries[j].Hours
	})
	return entries, nil
}

// Recent returns the activity feed, newest first, joining feed tokens back to
// their pledge records. Tokens whose record has vanished are skipped;
// unparsable hours default to zero: a record can be overwritten after its
// token was pushed, so the join must tolerate divergence.
func (s *Service) Recent(ctx context.Context) ([]models.RecentEntry, error) {
	tokens, err := s.store.RecentTokens(ctx)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return []models.RecentEntry{}, nil
	}

	views, err := s.store.PledgeViews(ctx, tokens)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RecentEntry, 0, len(views))
	for _, view := range views {
		if !view.Found {
			continue
		}
		hours, err := strconv.ParseFloat(view.RawHours, 64)
		if err != nil {
			hours = 0
		}
		entries = append(entries, models.RecentEntry{
			Country: view.Country,
			Hours:   hours,
		})
	}
	return entries, nil
}

// Countries returns catalog entries matching the filter, or the full catalog
// when the filter is empty.
func (s *Service) Countries(filter string) []country.Country {
	return s.catalog.Search(filter)
}
