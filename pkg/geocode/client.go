// Package geocode resolves free-text addresses into verified coordinates.
//
// Resolution runs an ordered list of query variants against a single
// geocoding provider, from most to least restrictive, and accepts the first
// candidate that passes a region check. Broad, unfiltered queries risk
// matching same-named places in other states, so the region check applies to
// every variant, not just the unfiltered one.
package geocode

import (
	"context"
	"strings"
)

// Candidate is the top result a provider returned for one query. Coordinates
// are always latitude/longitude in that order; each provider adapter
// normalizes whatever order its wire format uses.
type Candidate struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// Filters narrow a provider query.
type Filters struct {
	// CountryCode restricts results to one country (ISO 3166 alpha-2,
	// lowercase). Empty means no restriction.
	CountryCode string
}

// Provider is a single geocoding backend. Query issues one search and
// returns the top candidate, or nil when the provider found nothing.
type Provider interface {
	Name() string
	Query(ctx context.Context, text string, filters Filters) (*Candidate, error)
}

// Resolution is the binary outcome of resolving one address. There are no
// partial results: either a candidate was accepted or nothing usable came
// back from any variant.
type Resolution struct {
	Accepted    bool    `json:"success"`
	Latitude    float64 `json:"lat,omitempty"`
	Longitude   float64 `json:"lon,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Strategy    string  `json:"strategy,omitempty"`
}

// RegionPredicate decides whether a candidate is close enough to the target
// service area to be trusted.
type RegionPredicate func(Candidate) bool

// Region is a named service area with a coordinate bounding box.
type Region struct {
	Name   string
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Predicate returns the acceptance test for the region: inside the bounding
// box, or display name mentioning the region. Either alone accepts — the box
// covers candidates whose display name elides the state, the name match
// covers in-state addresses outside the core box.
func (r Region) Predicate() RegionPredicate {
	name := strings.ToLower(r.Name)
	return func(c Candidate) bool {
		inBox := c.Latitude >= r.MinLat && c.Latitude <= r.MaxLat &&
			c.Longitude >= r.MinLon && c.Longitude <= r.MaxLon
		return inBox || strings.Contains(strings.ToLower(c.DisplayName), name)
	}
}
