// Package resilience classifies pipeline failures so callers can map them to
// stable, machine-readable error kinds.
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// Kind is a stable failure category surfaced to API clients.
type Kind string

const (
	// KindInput marks missing or malformed request fields (400-class).
	KindInput Kind = "input"
	// KindNotFound marks valid input with no resolvable result (404-class).
	KindNotFound Kind = "not_found"
	// KindUpstream marks network or provider failures (500-class).
	KindUpstream Kind = "upstream"
	// KindConfig marks missing credentials or connection settings, kept
	// distinct from not-found so operators can tell the two apart.
	KindConfig Kind = "config"
)

// KindError tags an error with a Kind while preserving the cause chain.
type KindError struct {
	Kind Kind
	Err  error
}

func (e *KindError) Error() string {
	return e.Err.Error()
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// WithKind wraps err with the given kind.
func WithKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

// KindOf returns the Kind attached to err, or KindUpstream when the chain
// carries no explicit classification. Unclassified failures that reach a
// handler are by definition something broken on our side of the request.
func KindOf(err error) Kind {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return KindUpstream
}

// retryableText matches failures from net/http that only surface as text
// once wrapped, so errors.Is cannot see the sentinel anymore.
var retryableText = []string{
	"connection reset by peer",
	"broken pipe",
	"no such host",
	"tls handshake timeout",
	"i/o timeout",
}

// IsTransient reports whether err looks like a momentary network failure
// (timeout, refused or reset connection, DNS blip) rather than a durable
// one. The fetcher folds this into the wording of its upstream errors so
// operators can tell a flaky site from a blocking one.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	for _, errno := range []syscall.Errno{syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED} {
		if errors.Is(err, errno) {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, p := range retryableText {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
