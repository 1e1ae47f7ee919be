package rsu

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/rsu/date"
	"github.com/patrickmn/go-cache"
)

// RateResolver returns the exchange rate to apply on a given day.
type RateResolver interface {
	Rate(ctx context.Context, from, to Currency, on date.Date) (ExchangeRate, error)
}

// DefaultFallbackWindow is the number of days walked back to find a published rate.
const DefaultFallbackWindow = 7

// FallbackResolver resolves USD/BRL rates from a RateSource, walking back day
// by day when the requested day has no publication.
type FallbackResolver struct {
	source RateSource
	window int
}

// NewFallbackResolver returns a resolver over source with the default window.
func NewFallbackResolver(source RateSource) *FallbackResolver {
	return &FallbackResolver{source: source, window: DefaultFallbackWindow}
}

// WithWindow returns a copy of the resolver walking back at most days days.
func (r *FallbackResolver) WithWindow(days int) *FallbackResolver {
	c := *r
	c.window = max(days, 0)
	return &c
}

// Rate returns the rate published on 'on', or the closest one published at
// most window days before.
//
// A source error on a day is treated like an unpublished day. When no rate is
// found, ErrRateNotFound is returned, unless every attempt failed with a source
// error, in which case ErrRateSourceUnavailable is returned.
func (r *FallbackResolver) Rate(ctx context.Context, from, to Currency, on date.Date) (ExchangeRate, error) {
	if from != USD || to != BRL {
		return ExchangeRate{}, fmt.Errorf("%w: %s/%s", ErrUnsupportedCurrencyPair, from, to)
	}

	var lastErr error
	failures := 0
	for day := range (date.Range{From: on.Add(-r.window), To: on}).Days() {
		if err := ctx.Err(); err != nil {
			return ExchangeRate{}, fmt.Errorf("%w: %w", ErrRateSourceUnavailable, err)
		}
		q, ok, err := r.source.Quote(ctx, day)
		if err != nil {
			lastErr = err
			failures++
			continue
		}
		if ok {
			return NewExchangeRate(from, to, day, q)
		}
	}
	if failures == r.window+1 {
		return ExchangeRate{}, fmt.Errorf("%w: %s/%s on %s: %w", ErrRateSourceUnavailable, from, to, on, lastErr)
	}
	return ExchangeRate{}, fmt.Errorf("%w: %s/%s for %s (tried %d days back)", ErrRateNotFound, from, to, on, r.window)
}

// Prefetch forwards the range, extended by the window, to the source when it supports it.
func (r *FallbackResolver) Prefetch(ctx context.Context, rg date.Range) error {
	p, ok := r.source.(Prefetcher)
	if !ok {
		return nil
	}
	return p.Prefetch(ctx, date.Range{From: rg.From.Add(-r.window), To: rg.To})
}

// CachedResolver memoizes the rates returned by another resolver, including
// ErrRateNotFound answers. Other errors are not cached.
type CachedResolver struct {
	next  RateResolver
	cache *cache.Cache
}

// cached is a memoized answer.
type cached struct {
	rate ExchangeRate
	err  error
}

// NewCachedResolver returns a resolver caching next's answers for the lifetime of the resolver.
func NewCachedResolver(next RateResolver) *CachedResolver {
	return NewCachedResolverWith(next, cache.New(cache.NoExpiration, 0))
}

// NewCachedResolverWith returns a resolver caching next's answers in c,
// letting the caller pick the expiration policy or share the cache.
func NewCachedResolverWith(next RateResolver, c *cache.Cache) *CachedResolver {
	return &CachedResolver{next: next, cache: c}
}

func cacheKey(from, to Currency, on date.Date) string {
	return string(from) + "/" + string(to) + "/" + on.String()
}

func (r *CachedResolver) Rate(ctx context.Context, from, to Currency, on date.Date) (ExchangeRate, error) {
	key := cacheKey(from, to, on)
	if v, found := r.cache.Get(key); found {
		c := v.(cached)
		return c.rate, c.err
	}
	rate, err := r.next.Rate(ctx, from, to, on)
	if err == nil || errors.Is(err, ErrRateNotFound) {
		r.cache.Set(key, cached{rate: rate, err: err}, cache.DefaultExpiration)
	}
	return rate, err
}

// Prefetch forwards to the wrapped resolver when it supports it.
func (r *CachedResolver) Prefetch(ctx context.Context, rg date.Range) error {
	if p, ok := r.next.(Prefetcher); ok {
		return p.Prefetch(ctx, rg)
	}
	return nil
}

// Clear drops every cached answer.
func (r *CachedResolver) Clear() { r.cache.Flush() }

// Len returns the number of cached answers.
func (r *CachedResolver) Len() int { return r.cache.ItemCount() }
