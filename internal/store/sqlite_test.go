package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conlan-group/listings-cli/internal/config"
	"github.com/conlan-group/listings-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testRecord(street, city string) model.ListingRecord {
	return model.ListingRecord{
		Street:   street,
		City:     city,
		State:    "MD",
		Zip:      "20850",
		Price:    "$500,000",
		Bedrooms: 3,
		Source:   "https://www.zillow.com/homedetails/test",
	}
}

func TestSQLite_SaveAndGet(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	saved, err := s.SaveListing(ctx, model.StoredListing{
		Record:    testRecord("123 Main St", "Rockville"),
		Latitude:  39.08,
		Longitude: -77.15,
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := s.GetListing(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "123 Main St", got.Record.Street)
	assert.Equal(t, "Rockville", got.Record.City)
	assert.InDelta(t, 39.08, got.Latitude, 0.0001)
	assert.InDelta(t, -77.15, got.Longitude, 0.0001)
}

func TestSQLite_SaveUpsertsByID(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	saved, err := s.SaveListing(ctx, model.StoredListing{Record: testRecord("1 First St", "Rockville")})
	require.NoError(t, err)

	saved.Record.Price = "$999,999"
	_, err = s.SaveListing(ctx, *saved)
	require.NoError(t, err)

	got, err := s.GetListing(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "$999,999", got.Record.Price)

	all, err := s.ListListings(ctx, ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLite_GetMissing(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetListing(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_ListFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for _, rec := range []model.ListingRecord{
		testRecord("1 A St", "Rockville"),
		testRecord("2 B St", "Bethesda"),
		testRecord("3 C St", "Rockville"),
	} {
		_, err := s.SaveListing(ctx, model.StoredListing{Record: rec})
		require.NoError(t, err)
	}

	rockville, err := s.ListListings(ctx, ListingFilter{City: "Rockville"})
	require.NoError(t, err)
	assert.Len(t, rockville, 2)

	md, err := s.ListListings(ctx, ListingFilter{State: "MD"})
	require.NoError(t, err)
	assert.Len(t, md, 3)

	limited, err := s.ListListings(ctx, ListingFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_Delete(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	saved, err := s.SaveListing(ctx, model.StoredListing{Record: testRecord("1 A St", "Rockville")})
	require.NoError(t, err)

	require.NoError(t, s.DeleteListing(ctx, saved.ID))
	assert.ErrorIs(t, s.DeleteListing(ctx, saved.ID), ErrNotFound)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unknown driver")
}

func TestOpen_SQLiteDefault(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "open.db")
	s, err := Open(context.Background(), config.StoreConfig{Driver: "sqlite", DatabaseURL: dsn})
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck
	assert.IsType(t, &SQLiteStore{}, s)
}
