// Package store is the transactional command interface over the key-value
// backend. It carries no business logic; validation, joining and ordering
// live in the service layer.
package store

import (
	"context"

	"pledgeboard/internal/pledge/models"
)

// Key layout inside the store.
const (
	tokenKeyPrefix   = "token:"
	hoursKeyPrefix   = "country:hours:"
	countKeyPrefix   = "country:count:"
	recentUpdatesKey = "recent_updates"

	// RecentCapacity bounds the recent-updates feed. The trim happens in the
	// same atomic batch as the push, so the list never exceeds it at any
	// observation point.
	RecentCapacity = 5
)

// Aggregate is the pair of derived counters for one country.
type Aggregate struct {
	Hours float64
	Count int64
}

// PledgeView is the raw read-side projection of a pledge record. Hours stays
// a string here: the reader decides how to treat unparsable values.
type PledgeView struct {
	Token    string
	Country  string
	RawHours string
	Found    bool
}

// Store is the adapter contract both backends satisfy.
type Store interface {
	// RecordPledge applies the full write batch atomically: store the record
	// (overwrite), increment both country counters, push the token onto the
	// recent feed and trim it to capacity. No partial application is ever
	// observable.
	RecordPledge(ctx context.Context, p models.Pledge) error

	// Aggregates multi-gets both counters for every id in one round trip.
	// Countries with no hours value recorded are omitted from the result.
	Aggregates(ctx context.Context, countryIDs []string) (map[string]Aggregate, error)

	// RecentTokens returns the feed contents, head (newest) first.
	RecentTokens(ctx context.Context) ([]string, error)

	// PledgeViews batch-fetches the country and hours fields for each token,
	// preserving order. Wholly absent records come back with Found=false.
	PledgeViews(ctx context.Context, tokens []string) ([]PledgeView, error)
}

func tokenKey(token string) string {
	return tokenKeyPrefix + token
}

func hoursKey(countryID string) string {
	return hoursKeyPrefix + countryID
}

func countKey(countryID string) string {
	return countKeyPrefix + countryID
}
