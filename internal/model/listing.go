// Package model defines the canonical listing types shared across the pipeline.
package model

import (
	"net/url"
	"strings"
	"time"
)

// ListingRecord is the normalized output of extracting one listing page.
// Every field except Source is optional: extraction fills what it can find
// and leaves the rest zero-valued. A partially filled record is valid.
type ListingRecord struct {
	Headline    string   `json:"headline"`
	Street      string   `json:"street"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Zip         string   `json:"zip"`
	Price       string   `json:"price"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   float64  `json:"bathrooms"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Source      string   `json:"source"`
}

// Address joins the discovered address components into a single line
// suitable for geocoding. Empty components are skipped.
func (r ListingRecord) Address() string {
	parts := []string{r.Street, r.City, strings.TrimSpace(r.State + " " + r.Zip)}
	var nonEmpty []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// StoredListing wraps a ListingRecord with persistence metadata.
type StoredListing struct {
	ID        string        `json:"id"`
	Record    ListingRecord `json:"record"`
	Latitude  float64       `json:"latitude,omitempty"`
	Longitude float64       `json:"longitude,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// supportedDomains lists the listing sites the extractor understands.
var supportedDomains = []string{"zillow.com", "trulia.com", "redfin.com"}

// SupportedListingURL reports whether the URL points at a listing site the
// pipeline knows how to parse.
func SupportedListingURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range supportedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
