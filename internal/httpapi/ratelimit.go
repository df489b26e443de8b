package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/conlan-group/listings-cli/internal/config"
	"github.com/conlan-group/listings-cli/internal/resilience"
)

type limitClass string

const (
	classRead    limitClass = "read"
	classWrite   limitClass = "write"
	classGeocode limitClass = "geocode"
)

type window struct {
	start time.Time
	count int
}

// rateLimiter counts requests per client and class over a fixed window.
// Counters reset when the window rolls over rather than sliding.
type rateLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	cfg       config.RateLimitConfig
	now       func() time.Time
	lastSweep time.Time
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		windows: make(map[string]*window),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (rl *rateLimiter) limitFor(class limitClass) int {
	switch class {
	case classWrite:
		return rl.cfg.WritePerWindow
	case classGeocode:
		return rl.cfg.GeocodePerWindow
	default:
		return rl.cfg.ReadPerWindow
	}
}

// allow records one request and reports whether it fits the window. The
// second return is the seconds remaining until the window resets.
func (rl *rateLimiter) allow(client string, class limitClass) (bool, int) {
	limit := rl.limitFor(class)
	if limit <= 0 {
		return true, 0
	}
	windowLen := time.Duration(rl.cfg.WindowSecs) * time.Second
	if windowLen <= 0 {
		windowLen = time.Minute
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	key := client + "|" + string(class)
	now := rl.now()
	rl.sweep(now, windowLen)
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= windowLen {
		w = &window{start: now}
		rl.windows[key] = w
	}

	w.count++
	if w.count > limit {
		retry := int(windowLen.Seconds() - now.Sub(w.start).Seconds())
		if retry < 1 {
			retry = 1
		}
		return false, retry
	}
	return true, 0
}

// sweep drops windows that have already expired, at most once per window
// length, so the map stays bounded by the number of active clients. Callers
// hold the mutex.
func (rl *rateLimiter) sweep(now time.Time, windowLen time.Duration) {
	if now.Sub(rl.lastSweep) < windowLen {
		return
	}
	rl.lastSweep = now
	for key, w := range rl.windows {
		if now.Sub(w.start) >= windowLen {
			delete(rl.windows, key)
		}
	}
}

func (rl *rateLimiter) middleware(class limitClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientIP(r)
			ok, retry := rl.allow(client, class)
			if !ok {
				zap.L().Warn("rate limit exceeded",
					zap.String("client", client),
					zap.String("class", string(class)),
				)
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeJSON(w, http.StatusTooManyRequests, errorBody{
					Kind:  string(resilience.KindInput),
					Error: "rate limit exceeded, retry later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
