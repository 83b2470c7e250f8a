package store

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"pledgeboard/internal/pledge/models"
	dErrors "pledgeboard/pkg/domain-errors"
)

var (
	recordPledgeDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pledgeboard_record_pledge_duration_ms",
		Help:    "Latency of the atomic pledge write batch in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	})
)

// RedisStore is the production Store implementation. Atomicity of the write
// batch is delegated entirely to MULTI/EXEC; the store holds no locks.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %s", dErrors.New(dErrors.CodeStoreUnavailable, "cannot reach db"), err)
}

// RecordPledge applies the five-step batch as one MULTI/EXEC transaction.
func (s *RedisStore) RecordPledge(ctx context.Context, p models.Pledge) error {
	start := time.Now()
	defer func() {
		recordPledgeDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, tokenKey(p.Token),
		"country", p.Country,
		"hours", formatFloat(p.Hours),
		"timestamp", p.Timestamp.UTC().Format(time.RFC3339),
	)
	pipe.IncrByFloat(ctx, hoursKey(p.Country), p.Hours)
	pipe.Incr(ctx, countKey(p.Country))
	pipe.LPush(ctx, recentUpdatesKey, p.Token)
	pipe.LTrim(ctx, recentUpdatesKey, 0, RecentCapacity-1)

	if _, err := pipe.Exec(ctx); err != nil {
		return storeUnavailable(err)
	}
	return nil
}

// Aggregates fetches both counters for every country in a single MGET: all
// hours keys first, then all count keys, zipped back positionally.
func (s *RedisStore) Aggregates(ctx context.Context, countryIDs []string) (map[string]Aggregate, error) {
	if len(countryIDs) == 0 {
		return map[string]Aggregate{}, nil
	}

	keys := make([]string, 0, 2*len(countryIDs))
	for _, id := range countryIDs {
		keys = append(keys, hoursKey(id))
	}
	for _, id := range countryIDs {
		keys = append(keys, countKey(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storeUnavailable(err)
	}

	aggregates := make(map[string]Aggregate)
	for i, id := range countryIDs {
		rawHours, ok := values[i].(string)
		if !ok {
			// No hours value means no pledge recorded yet: omit, not zero.
			continue
		}
		hours, err := parseFloat(rawHours)
		if err != nil {
			return nil, fmt.Errorf("parse hours for %s: %w", id, err)
		}

		var count int64
		if rawCount, ok := values[len(countryIDs)+i].(string); ok {
			count, err = parseInt(rawCount)
			if err != nil {
				return nil, fmt.Errorf("parse count for %s: %w", id, err)
			}
		}
		aggregates[id] = Aggregate{Hours: hours, Count: count}
	}
	return aggregates, nil
}

// RecentTokens returns the whole feed, newest first.
func (s *RedisStore) RecentTokens(ctx context.Context) ([]string, error) {
	tokens, err := s.client.LRange(ctx, recentUpdatesKey, 0, -1).Result()
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return tokens, nil
}

// PledgeViews pipelines one HMGET per token. HMGET on a missing key yields
// all-nil fields, which marks the view as not found.
func (s *RedisStore) PledgeViews(ctx context.Context, tokens []string) ([]PledgeView, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(tokens))
	for i, token := range tokens {
		cmds[i] = pipe.HMGet(ctx, tokenKey(token), "country", "hours")
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storeUnavailable(err)
	}

	views := make([]PledgeView, len(tokens))
	for i, token := range tokens {
		fields := cmds[i].Val()
		view := PledgeView{Token: token}
		if country, ok := fields[0].(string); ok {
			view.Country = country
			view.Found = true
		}
		if rawHours, ok := fields[1].(string); ok {
			view.RawHours = rawHours
		}
		views[i] = view
	}
	return views, nil
}
