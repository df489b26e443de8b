package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/conlan-group/listings-cli/internal/config"
	"github.com/conlan-group/listings-cli/internal/fetch"
	"github.com/conlan-group/listings-cli/internal/store"
	"github.com/conlan-group/listings-cli/pkg/geocode"
)

// pipelineEnv holds the initialized components shared by the serve, ingest,
// geocode, and homes commands.
type pipelineEnv struct {
	Store    store.Store
	Fetcher  *fetch.PageFetcher
	Resolver *geocode.Resolver
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline opens the store, runs migrations, and builds the fetcher and
// geocode resolver. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	resolver, err := buildResolver(cfg.Geocode)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &pipelineEnv{
		Store:    st,
		Fetcher:  buildFetcher(cfg.Fetch),
		Resolver: resolver,
	}, nil
}

func buildFetcher(fc config.FetchConfig) *fetch.PageFetcher {
	return fetch.NewPageFetcher(fetch.Options{
		Timeout:      time.Duration(fc.TimeoutSecs) * time.Second,
		MaxRedirects: fc.MaxRedirects,
	})
}

// buildResolver constructs the geocode provider named in config and wraps it
// in the region-checked resolver.
func buildResolver(gc config.GeocodeConfig) (*geocode.Resolver, error) {
	var provider geocode.Provider
	switch gc.Provider {
	case "nominatim", "":
		opts := []geocode.NominatimOption{}
		if gc.NominatimBaseURL != "" {
			opts = append(opts, geocode.WithNominatimBaseURL(gc.NominatimBaseURL))
		}
		if gc.RequestsPerSec > 0 {
			opts = append(opts, geocode.WithNominatimRateLimit(gc.RequestsPerSec))
		}
		provider = geocode.NewNominatimProvider(gc.UserAgent, opts...)
	case "mapbox":
		opts := []geocode.MapboxOption{}
		if gc.MapboxBaseURL != "" {
			opts = append(opts, geocode.WithMapboxBaseURL(gc.MapboxBaseURL))
		}
		p, err := geocode.NewMapboxProvider(gc.MapboxToken, opts...)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, eris.Errorf("unknown geocode provider %q", gc.Provider)
	}

	region := geocode.Region{
		Name:   gc.RegionName,
		MinLat: gc.MinLat,
		MaxLat: gc.MaxLat,
		MinLon: gc.MinLon,
		MaxLon: gc.MaxLon,
	}

	resolverOpts := []geocode.ResolverOption{
		geocode.WithCountryCode(gc.CountryCode),
	}
	if gc.AttemptDelayMs > 0 {
		resolverOpts = append(resolverOpts,
			geocode.WithAttemptDelay(time.Duration(gc.AttemptDelayMs)*time.Millisecond))
	}

	return geocode.NewResolver(provider, region, resolverOpts...), nil
}
