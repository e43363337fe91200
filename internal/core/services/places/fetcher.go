package places

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/lcalzada-xor/where/internal/core/services/filter"
	"github.com/lcalzada-xor/where/internal/telemetry"
)

// DefaultTimeout bounds a single external fetch.
const DefaultTimeout = 8 * time.Second

// Fetcher runs one search and normalizes the response.
type Fetcher struct {
	searcher ports.PlacesSearcher
	params   filter.Params
	timeout  time.Duration
}

// NewFetcher creates a fetcher. A non-positive timeout uses DefaultTimeout.
func NewFetcher(searcher ports.PlacesSearcher, params filter.Params, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		searcher: searcher,
		params:   params,
		timeout:  timeout,
	}
}

type searchResult struct {
	raw []domain.RawPlace
	err error
}

// Fetch searches around origin for key. Every failure, including the timeout,
// wraps domain.ErrSearchService.
func (f *Fetcher) Fetch(ctx context.Context, origin domain.Coordinate, key domain.FilterKey) (domain.ResultSet, error) {
	start := time.Now()
	defer func() {
		telemetry.FetchDuration.WithLabelValues(string(key)).Observe(time.Since(start).Seconds())
	}()

	if !key.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", domain.ErrSearchService, domain.ErrUnknownFilter, key)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	// not every backend honors ctx, so the deadline is enforced here
	done := make(chan searchResult, 1)
	go func() {
		raw, err := f.searcher.SearchNearby(ctx, filter.Query(origin, key, f.params))
		done <- searchResult{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		outcome := "canceled"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = "timeout"
		}
		telemetry.FetchTotal.WithLabelValues(string(key), outcome).Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchService, ctx.Err())
	case res := <-done:
		if res.err != nil {
			telemetry.FetchTotal.WithLabelValues(string(key), "error").Inc()
			return nil, fmt.Errorf("%w: %w", domain.ErrSearchService, res.err)
		}
		telemetry.FetchTotal.WithLabelValues(string(key), "ok").Inc()
		return Normalize(origin, res.raw), nil
	}
}
