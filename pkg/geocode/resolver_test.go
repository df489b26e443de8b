package geocode

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// montgomery is the target region used throughout the resolver tests.
var montgomery = Region{
	Name:   "Maryland",
	MinLat: 38.8,
	MaxLat: 39.4,
	MinLon: -77.6,
	MaxLon: -76.8,
}

// scriptedProvider returns one scripted outcome per call, in order.
type scriptedProvider struct {
	calls   []providerCall
	outcome []scriptedOutcome
}

type providerCall struct {
	query   string
	filters Filters
}

type scriptedOutcome struct {
	candidate *Candidate
	err       error
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Query(_ context.Context, text string, filters Filters) (*Candidate, error) {
	i := len(p.calls)
	p.calls = append(p.calls, providerCall{query: text, filters: filters})
	if i >= len(p.outcome) {
		return nil, nil
	}
	return p.outcome[i].candidate, p.outcome[i].err
}

func newTestResolver(p Provider, opts ...ResolverOption) *Resolver {
	opts = append([]ResolverOption{WithAttemptDelay(0)}, opts...)
	return NewResolver(p, montgomery, opts...)
}

func TestResolve_FirstVariantAccepted(t *testing.T) {
	p := &scriptedProvider{outcome: []scriptedOutcome{
		{candidate: &Candidate{Latitude: 39.05, Longitude: -77.1, DisplayName: "123 Main St, Rockville, Montgomery County, Maryland, USA"}},
	}}

	res := newTestResolver(p).Resolve(context.Background(), "123 Main St, Rockville, MD")

	assert.True(t, res.Accepted)
	assert.Equal(t, "full address with country filter", res.Strategy)
	assert.InDelta(t, 39.05, res.Latitude, 0.0001)
	assert.InDelta(t, -77.1, res.Longitude, 0.0001)
	// First accepted candidate wins: no further variants attempted.
	require.Len(t, p.calls, 1)
	assert.Equal(t, "us", p.calls[0].filters.CountryCode)
	assert.Equal(t, "123 Main St, Rockville, MD", p.calls[0].query)
}

func TestResolve_OutOfRegionAlwaysRejected(t *testing.T) {
	// Every variant returns a confident-looking match in Texas.
	texas := &Candidate{Latitude: 32.78, Longitude: -96.8, DisplayName: "Main St, Dallas, Texas, USA"}
	p := &scriptedProvider{outcome: []scriptedOutcome{
		{candidate: texas}, {candidate: texas}, {candidate: texas}, {candidate: texas},
	}}

	res := newTestResolver(p).Resolve(context.Background(), "123 Main St")

	assert.False(t, res.Accepted)
	assert.Empty(t, res.Strategy)
	assert.Len(t, p.calls, 4)
}

func TestResolve_FourthVariantTextualMatchSuffices(t *testing.T) {
	// Coordinates outside the bounding box, but the display name mentions the
	// region — textual match alone accepts.
	western := &Candidate{Latitude: 39.64, Longitude: -78.76, DisplayName: "Main St, Cumberland, Allegany County, Maryland, USA"}
	p := &scriptedProvider{outcome: []scriptedOutcome{
		{}, {}, {}, {candidate: western},
	}}

	res := newTestResolver(p).Resolve(context.Background(), "123 Main St, Cumberland")

	assert.True(t, res.Accepted)
	assert.Equal(t, "no filters", res.Strategy)
	require.Len(t, p.calls, 4)
	// Last variant carries no country filter.
	assert.Empty(t, p.calls[3].filters.CountryCode)
}

func TestResolve_VariantQueries(t *testing.T) {
	p := &scriptedProvider{}
	newTestResolver(p).Resolve(context.Background(), "123 Main St,   Rockville")

	require.Len(t, p.calls, 4)
	assert.Equal(t, "123 Main St,   Rockville", p.calls[0].query)
	assert.Equal(t, "123 Main St, Rockville", p.calls[1].query)
	assert.Equal(t, "123 Main St,   Rockville, Maryland", p.calls[2].query)
	assert.Equal(t, "123 Main St,   Rockville", p.calls[3].query)
}

func TestResolve_VariantErrorDoesNotAbort(t *testing.T) {
	p := &scriptedProvider{outcome: []scriptedOutcome{
		{err: eris.New("transport broke")},
		{candidate: &Candidate{Latitude: 39.0, Longitude: -77.2, DisplayName: "Potomac, Maryland"}},
	}}

	res := newTestResolver(p).Resolve(context.Background(), "123 Main St")

	assert.True(t, res.Accepted)
	assert.Equal(t, "normalized address", res.Strategy)
	assert.Len(t, p.calls, 2)
}

func TestResolve_AllVariantsExhausted(t *testing.T) {
	p := &scriptedProvider{}
	res := newTestResolver(p).Resolve(context.Background(), "nowhere at all")

	assert.False(t, res.Accepted)
	assert.Zero(t, res.Latitude)
	assert.Zero(t, res.Longitude)
	assert.Len(t, p.calls, 4)
}

func TestResolve_ContextCanceledBetweenAttempts(t *testing.T) {
	p := &scriptedProvider{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewResolver(p, montgomery, WithAttemptDelay(10*time.Millisecond))
	res := r.Resolve(ctx, "123 Main St")

	assert.False(t, res.Accepted)
	// The first attempt runs, the inter-attempt delay observes cancellation.
	assert.Len(t, p.calls, 1)
}

func TestResolve_CustomAcceptFunc(t *testing.T) {
	p := &scriptedProvider{outcome: []scriptedOutcome{
		{candidate: &Candidate{Latitude: 1, Longitude: 1, DisplayName: "anywhere"}},
	}}

	r := newTestResolver(p, WithAcceptFunc(func(Candidate) bool { return true }))
	res := r.Resolve(context.Background(), "123 Main St")

	assert.True(t, res.Accepted)
}

func TestRegionPredicate(t *testing.T) {
	pred := montgomery.Predicate()

	inBox := Candidate{Latitude: 39.05, Longitude: -77.1, DisplayName: "Rockville"}
	assert.True(t, pred(inBox))

	nameOnly := Candidate{Latitude: 39.64, Longitude: -78.76, DisplayName: "Cumberland, Maryland, USA"}
	assert.True(t, pred(nameOnly))

	nameCaseInsensitive := Candidate{Latitude: 0, Longitude: 0, DisplayName: "SOMEWHERE, MARYLAND"}
	assert.True(t, pred(nameCaseInsensitive))

	neither := Candidate{Latitude: 32.78, Longitude: -96.8, DisplayName: "Dallas, Texas"}
	assert.False(t, pred(neither))
}
