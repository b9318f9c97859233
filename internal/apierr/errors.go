// Package apierr classifies failures from the Riot and Google APIs into the
// small set of outcomes the pipeline reacts to.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	// ErrAuth means the credential was rejected. Every later call would fail
	// the same way, so the run stops.
	ErrAuth = errors.New("authentication rejected")
	// ErrNotFound means the resource does not exist (yet).
	ErrNotFound = errors.New("not found")
	// ErrRateLimited means the remote service signalled quota exhaustion.
	ErrRateLimited = errors.New("rate limited")
	// ErrTransient covers network failures and 5xx responses.
	ErrTransient = errors.New("transient failure")
)

// StatusError is a non-2xx HTTP response from an upstream service.
type StatusError struct {
	Service    string
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap maps the status code onto one of the sentinels so callers can use
// errors.Is.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return ErrAuth
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode >= 500:
		return ErrTransient
	default:
		return nil
	}
}

// FromResponse builds a StatusError from an HTTP response, reading the
// Retry-After header (seconds) when present.
func FromResponse(service string, resp *http.Response) *StatusError {
	e := &StatusError{Service: service, StatusCode: resp.StatusCode}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			e.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return e
}

// Transient wraps a transport-level failure (dial, timeout, reset).
func Transient(service string, err error) error {
	return fmt.Errorf("%s request failed: %w: %w", service, ErrTransient, err)
}

// IsFatal reports whether err should halt the whole run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth)
}

// Retryable reports whether another attempt at the same call may succeed.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrRateLimited)
}

// RetryAfter returns the server-requested delay carried by err, or zero.
func RetryAfter(err error) time.Duration {
	var se *StatusError
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return 0
}

// Kind returns a short label for logs and summaries.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrRateLimited):
		return "rate-limited"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "error"
	}
}
