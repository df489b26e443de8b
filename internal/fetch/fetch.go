// Package fetch retrieves raw listing pages. Real-estate sites commonly serve
// degraded content or block outright when request headers don't look like a
// desktop browser, so every request carries a full browser header set.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/conlan-group/listings-cli/internal/resilience"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a listing page we read. Listing pages with
// embedded JSON blobs run large but never this large.
const maxBodyBytes = 4 << 20

// HTTPError reports a non-2xx final response.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch: status %d from %s", e.Status, e.URL)
}

// Options configures the PageFetcher.
type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string
}

// PageFetcher retrieves HTML for single listing URLs. It follows redirects up
// to a fixed cap and performs no retries; fallback behavior belongs to callers.
type PageFetcher struct {
	client *http.Client
	opts   Options
}

// NewPageFetcher creates a PageFetcher with the given options.
func NewPageFetcher(opts Options) *PageFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRedirects == 0 {
		opts.MaxRedirects = 5
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	f := &PageFetcher{opts: opts}
	f.client = &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= opts.MaxRedirects {
				return eris.Errorf("fetch: stopped after %d redirects", opts.MaxRedirects)
			}
			return nil
		},
	}
	return f
}

// Fetch retrieves the HTML body for url. Failures are classified as upstream:
// network errors, timeouts, exhausted redirects, and non-2xx final statuses
// all abort the ingestion request.
func (f *PageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", resilience.WithKind(resilience.KindInput, eris.Wrap(err, "fetch: build request"))
	}
	f.setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		if resilience.IsTransient(err) {
			return "", resilience.WithKind(resilience.KindUpstream,
				eris.Wrap(err, "fetch: transient network failure"))
		}
		return "", resilience.WithKind(resilience.KindUpstream, eris.Wrap(err, "fetch: request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Debug("fetch: non-2xx response",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return "", resilience.WithKind(resilience.KindUpstream,
			&HTTPError{Status: resp.StatusCode, URL: url})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", resilience.WithKind(resilience.KindUpstream, eris.Wrap(err, "fetch: read body"))
	}

	return string(body), nil
}

// setBrowserHeaders emulates a mainstream desktop Chrome request.
func (f *PageFetcher) setBrowserHeaders(req *http.Request) {
	h := req.Header
	h.Set("User-Agent", f.opts.UserAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Cache-Control", "max-age=0")
	h.Set("sec-ch-ua", `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`)
	h.Set("sec-ch-ua-mobile", "?0")
	h.Set("sec-ch-ua-platform", `"macOS"`)
	h.Set("DNT", "1")
	h.Set("Referer", "https://www.google.com/")
}
