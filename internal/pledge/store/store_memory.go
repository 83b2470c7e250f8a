package store

import (
	"context"
	"sync"
	"time"

	"pledgeboard/internal/pledge/models"
)

type memoryRecord struct {
	country   string
	hours     string
	timestamp string
}

// MemoryStore is an in-memory Store used by unit tests. The mutex stands in
// for MULTI/EXEC: every batch mutates under one critical section so readers
// observe the same all-or-nothing behavior as the Redis backend.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	hours   map[string]float64
	counts  map[string]int64
	recent  []string

	// FailNext forces the next mutating call to fail, for error-path tests.
	FailNext error
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryRecord),
		hours:   make(map[string]float64),
		counts:  make(map[string]int64),
	}
}

func (s *MemoryStore) RecordPledge(ctx context.Context, p models.Pledge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailNext; err != nil {
		s.FailNext = nil
		return err
	}

	s.records[p.Token] = memoryRecord{
		country:   p.Country,
		hours:     formatFloat(p.Hours),
		timestamp: p.Timestamp.UTC().Format(time.RFC3339),
	}
	s.hours[p.Country] += p.Hours
	s.counts[p.Country]++

	s.recent = append([]string{p.Token}, s.recent...)
	if len(s.recent) > RecentCapacity {
		s.recent = s.recent[:RecentCapacity]
	}
	return nil
}

func (s *MemoryStore) Aggregates(ctx context.Context, countryIDs []string) (map[string]Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	aggregates := make(map[string]Aggregate)
	for _, id := range countryIDs {
		hours, ok := s.hours[id]
		if !ok {
			continue
		}
		aggregates[id] = Aggregate{Hours: hours, Count: s.counts[id]}
	}
	return aggregates, nil
}

func (s *MemoryStore) RecentTokens(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := make([]string, len(s.recent))
	copy(tokens, s.recent)
	return tokens, nil
}

func (s *MemoryStore) PledgeViews(ctx context.Context, tokens []string) ([]PledgeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]PledgeView, len(tokens))
	for i, token := range tokens {
		view := PledgeView{Token: token}
		if rec, ok := s.records[token]; ok {
			view.Country = rec.country
			view.RawHours = rec.hours
			view.Found = true
		}
		views[i] = view
	}
	return views, nil
}

// DeleteRecord drops a pledge record while leaving the feed untouched. Only
// used in tests to simulate feed/record divergence.
func (s *MemoryStore) DeleteRecord(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, token)
}

// CorruptHours overwrites a record's hours field with an unparsable value.
// Only used in tests.
func (s *MemoryStore) CorruptHours(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[token]; ok {
		rec.hours = "not-a-number"
		s.records[token] = rec
	}
}
