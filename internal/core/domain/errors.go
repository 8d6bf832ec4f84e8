package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file no normaliser handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrParse indicates a subtitle file could not be parsed.
	// Normalisers swallow it and return empty text.
	ErrParse = errors.New("parse error")

	// ErrEmbeddingCall indicates a single embedding request failed.
	// The batch manager records it per item and carries on.
	ErrEmbeddingCall = errors.New("embedding call failed")

	// ErrDimensionMismatch indicates vectors of different lengths were compared.
	// This means index-time and query-time models differ and is never masked.
	ErrDimensionMismatch = fmt.Errorf("%w: embedding dimension mismatch", ErrInvalidInput)

	// ErrMissingArtifact indicates a session has no stored collection yet.
	ErrMissingArtifact = errors.New("missing artifact")

	// ErrEmbeddingInProgress indicates another run is already writing the session's records.
	ErrEmbeddingInProgress = errors.New("embedding in progress")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Chat is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Embedding and querying are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the provider's rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// RateLimitError is returned by providers that reject a request for quota reasons.
// It matches ErrRateLimited with errors.Is.
type RateLimitError struct {
	// Provider names the service that rejected the call.
	Provider string

	// RetryAfter is the provider's hint, zero when none was given.
	RetryAfter time.Duration

	// Err is the underlying provider error.
	Err error
}

func (e *RateLimitError) Error() string {
	msg := e.Provider + ": rate limit exceeded"
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// Unwrap returns the underlying provider error.
func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// RetryAfter extracts the retry hint from a rate limit error, or zero.
func RetryAfter(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}

// retryAfterDateLayout is the HTTP-date form of a Retry-After header.
const retryAfterDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// ParseRetryAfter reads a Retry-After header value given in seconds or as an HTTP date.
// Missing, malformed and past values give zero.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	at, err := time.Parse(retryAfterDateLayout, value)
	if err != nil {
		return 0
	}
	if d := at.Sub(now); d > 0 {
		return d
	}
	return 0
}
