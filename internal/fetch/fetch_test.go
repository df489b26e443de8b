package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conlan-group/listings-cli/internal/resilience"
)

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html><body>listing page</body></html>")
	}))
	defer srv.Close()

	f := NewPageFetcher(Options{})
	html, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "listing page")
}

func TestFetch_SendsBrowserHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	f := NewPageFetcher(Options{})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, got.Get("User-Agent"), "Mozilla/5.0")
	assert.Contains(t, got.Get("Accept"), "text/html")
	assert.Equal(t, "en-US,en;q=0.9", got.Get("Accept-Language"))
	assert.Equal(t, "https://www.google.com/", got.Get("Referer"))
}

func TestFetch_FollowsRedirectChain(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/hop1", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop2", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/hop2", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop3", http.StatusFound)
	})
	mux.HandleFunc("/hop3", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>final destination</html>")
	})

	f := NewPageFetcher(Options{})
	html, err := f.Fetch(context.Background(), srv.URL+"/hop1")
	require.NoError(t, err)
	assert.Equal(t, "<html>final destination</html>", html)
}

func TestFetch_RedirectLoopCapped(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Redirect(w, r, "/loop", http.StatusFound)
	})

	f := NewPageFetcher(Options{MaxRedirects: 3})
	_, err := f.Fetch(context.Background(), srv.URL+"/loop")
	require.Error(t, err)
	assert.Equal(t, resilience.KindUpstream, resilience.KindOf(err))
	assert.LessOrEqual(t, hits, 5)
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewPageFetcher(Options{})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.Status)
	assert.Equal(t, resilience.KindUpstream, resilience.KindOf(err))
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = io.WriteString(w, "too late")
	}))
	defer srv.Close()

	f := NewPageFetcher(Options{Timeout: 50 * time.Millisecond})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, resilience.KindUpstream, resilience.KindOf(err))
	assert.ErrorContains(t, err, "transient network failure")
	assert.True(t, resilience.IsTransient(err))
}

func TestFetch_NetworkError(t *testing.T) {
	// Point at a closed port.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	addr := srv.URL
	srv.Close()

	f := NewPageFetcher(Options{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), addr)
	require.Error(t, err)
	assert.Equal(t, resilience.KindUpstream, resilience.KindOf(err))
	// Refused connections are momentary failures and get the transient wording.
	assert.ErrorContains(t, err, "transient network failure")
}

func TestFetch_InvalidURL(t *testing.T) {
	f := NewPageFetcher(Options{})
	_, err := f.Fetch(context.Background(), "http://  /bad url")
	require.Error(t, err)
	assert.Equal(t, resilience.KindInput, resilience.KindOf(err))
}

func TestHTTPError_Message(t *testing.T) {
	err := &HTTPError{Status: 502, URL: "https://example.com/x"}
	assert.Equal(t, fmt.Sprintf("fetch: status %d from %s", 502, "https://example.com/x"), err.Error())
}
