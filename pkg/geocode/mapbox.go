package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultMapboxBaseURL = "https://api.mapbox.com"

// mapboxResponse is the Mapbox Geocoding v5 response. Note: center is
// [longitude, latitude] — the reverse of Nominatim.
type mapboxResponse struct {
	Features []struct {
		Center    [2]float64 `json:"center"`
		PlaceName string     `json:"place_name"`
	} `json:"features"`
}

// MapboxProvider queries the Mapbox Geocoding API.
type MapboxProvider struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// MapboxOption configures the MapboxProvider.
type MapboxOption func(*MapboxProvider)

// WithMapboxBaseURL overrides the API base URL.
func WithMapboxBaseURL(base string) MapboxOption {
	return func(p *MapboxProvider) {
		p.baseURL = base
	}
}

// WithMapboxHTTPClient sets a custom HTTP client.
func WithMapboxHTTPClient(hc *http.Client) MapboxOption {
	return func(p *MapboxProvider) {
		p.httpClient = hc
	}
}

// NewMapboxProvider creates a MapboxProvider. The access token is required.
func NewMapboxProvider(token string, opts ...MapboxOption) (*MapboxProvider, error) {
	if strings.TrimSpace(token) == "" {
		return nil, eris.New("geocode: mapbox access token not configured")
	}
	p := &MapboxProvider{
		baseURL:    defaultMapboxBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name implements Provider.
func (p *MapboxProvider) Name() string { return "mapbox" }

// Query implements Provider. Mapbox returns center as [lon, lat]; the swap to
// lat/lon happens here and nowhere else.
func (p *MapboxProvider) Query(ctx context.Context, text string, filters Filters) (*Candidate, error) {
	params := url.Values{
		"access_token": {p.token},
		"limit":        {"1"},
	}
	if filters.CountryCode != "" {
		params.Set("country", strings.ToUpper(filters.CountryCode))
	}

	reqURL := p.baseURL + "/geocoding/v5/mapbox.places/" + url.PathEscape(text) + ".json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: mapbox build request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: mapbox request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: mapbox returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: mapbox read body")
	}

	var mbResp mapboxResponse
	if err := json.Unmarshal(body, &mbResp); err != nil {
		return nil, eris.Wrap(err, "geocode: mapbox parse response")
	}
	if len(mbResp.Features) == 0 {
		return nil, nil
	}

	f := mbResp.Features[0]
	return &Candidate{
		Latitude:    f.Center[1],
		Longitude:   f.Center[0],
		DisplayName: f.PlaceName,
	}, nil
}
