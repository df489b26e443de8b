package geocode

import (
	"context"
	"regexp"
	"time"

	"go.uber.org/zap"
)

var commaSpacingRe = regexp.MustCompile(`,\s+`)

// strategy is one phrasing/filtering of the input address.
type strategy struct {
	label   string
	query   string
	filters Filters
}

// Resolver runs the ordered query variants against a provider.
type Resolver struct {
	provider     Provider
	region       Region
	accept       RegionPredicate
	attemptDelay time.Duration
	countryCode  string
}

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

// WithAttemptDelay sets the pause between query variants. The delay throttles
// load on the shared provider; bursts get rate-limited server-side.
func WithAttemptDelay(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.attemptDelay = d
	}
}

// WithCountryCode sets the country filter used by the restrictive variants.
func WithCountryCode(code string) ResolverOption {
	return func(r *Resolver) {
		r.countryCode = code
	}
}

// WithAcceptFunc replaces the region-derived acceptance predicate.
func WithAcceptFunc(pred RegionPredicate) ResolverOption {
	return func(r *Resolver) {
		r.accept = pred
	}
}

// NewResolver creates a Resolver for the given provider and target region.
func NewResolver(provider Provider, region Region, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		provider:     provider,
		region:       region,
		attemptDelay: 500 * time.Millisecond,
		countryCode:  "us",
	}
	r.accept = region.Predicate()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// strategies builds the ordered variants for one address, most restrictive
// first. The unfiltered variant runs last; it is safe only because the
// acceptance predicate independently verifies whatever it returns.
func (r *Resolver) strategies(address string) []strategy {
	country := Filters{CountryCode: r.countryCode}
	return []strategy{
		{label: "full address with country filter", query: address, filters: country},
		{label: "normalized address", query: commaSpacingRe.ReplaceAllString(address, ", "), filters: country},
		{label: "with " + r.region.Name + " appended", query: address + ", " + r.region.Name, filters: country},
		{label: "no filters", query: address},
	}
}

// Resolve tries each variant in order and returns the first accepted
// candidate. Exhausting all variants is a normal outcome reported as
// Accepted=false, never an error; per-variant transport and parse failures
// are logged and treated as "no candidate".
func (r *Resolver) Resolve(ctx context.Context, address string) Resolution {
	strategies := r.strategies(address)
	for i, s := range strategies {
		if i > 0 {
			if err := sleepCtx(ctx, r.attemptDelay); err != nil {
				zap.L().Debug("geocode: resolution canceled", zap.Error(err))
				return Resolution{}
			}
		}

		candidate, err := r.provider.Query(ctx, s.query, s.filters)
		if err != nil {
			zap.L().Debug("geocode: variant failed, trying next",
				zap.String("provider", r.provider.Name()),
				zap.String("strategy", s.label),
				zap.Error(err),
			)
			continue
		}
		if candidate == nil {
			continue
		}

		if !r.accept(*candidate) {
			zap.L().Debug("geocode: candidate outside target region",
				zap.String("strategy", s.label),
				zap.String("display_name", candidate.DisplayName),
			)
			continue
		}

		zap.L().Info("geocode: address resolved",
			zap.String("strategy", s.label),
			zap.Float64("lat", candidate.Latitude),
			zap.Float64("lon", candidate.Longitude),
		)
		return Resolution{
			Accepted:    true,
			Latitude:    candidate.Latitude,
			Longitude:   candidate.Longitude,
			DisplayName: candidate.DisplayName,
			Strategy:    s.label,
		}
	}

	zap.L().Info("geocode: all variants exhausted", zap.String("address", address))
	return Resolution{}
}

// sleepCtx waits d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
