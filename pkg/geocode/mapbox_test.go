package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMapboxProvider_RequiresToken(t *testing.T) {
	_, err := NewMapboxProvider("")
	assert.ErrorContains(t, err, "token")

	_, err = NewMapboxProvider("   ")
	assert.Error(t, err)
}

func TestMapboxQuery_NormalizesCoordinateOrder(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		// Mapbox center is [lon, lat].
		_, _ = io.WriteString(w, `{"features": [{"center": [-77.1528, 39.0840], "place_name": "Rockville, Maryland, United States"}]}`)
	}))
	defer srv.Close()

	p, err := NewMapboxProvider("tok123", WithMapboxBaseURL(srv.URL))
	require.NoError(t, err)

	c, err := p.Query(context.Background(), "Rockville, MD", Filters{CountryCode: "us"})
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.InDelta(t, 39.0840, c.Latitude, 0.0001)
	assert.InDelta(t, -77.1528, c.Longitude, 0.0001)
	assert.Equal(t, "Rockville, Maryland, United States", c.DisplayName)
	assert.Contains(t, gotPath, "/geocoding/v5/mapbox.places/")
	assert.Contains(t, gotQuery, "access_token=tok123")
	assert.Contains(t, gotQuery, "country=US")
}

func TestMapboxQuery_NoFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"features": []}`)
	}))
	defer srv.Close()

	p, err := NewMapboxProvider("tok", WithMapboxBaseURL(srv.URL))
	require.NoError(t, err)

	c, err := p.Query(context.Background(), "nowhere", Filters{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestMapboxQuery_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, err := NewMapboxProvider("bad-token", WithMapboxBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = p.Query(context.Background(), "Rockville", Filters{})
	assert.ErrorContains(t, err, "401")
}
