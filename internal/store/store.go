// Package store persists geocoded listings behind a driver-agnostic interface.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/conlan-group/listings-cli/internal/config"
	"github.com/conlan-group/listings-cli/internal/model"
)

// ErrNotFound is returned when a requested listing does not exist.
var ErrNotFound = eris.New("store: listing not found")

// ListingFilter specifies criteria for listing queries.
type ListingFilter struct {
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for ingested listings.
type Store interface {
	SaveListing(ctx context.Context, listing model.StoredListing) (*model.StoredListing, error)
	GetListing(ctx context.Context, id string) (*model.StoredListing, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]model.StoredListing, error)
	DeleteListing(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
