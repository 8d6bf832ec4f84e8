package driven

import (
	"context"
	"time"
)

// Pacer spaces out calls to a rate-limited provider.
// Every method returns ctx.Err() if the context ends while waiting.
type Pacer interface {
	// Wait blocks until the next call may be made.
	Wait(ctx context.Context) error

	// AfterItem is called after every embedding call.
	AfterItem(ctx context.Context) error

	// AfterBatch is called after every batch of documents.
	AfterBatch(ctx context.Context) error

	// Backoff delays the next Wait after a rate limit rejection.
	// A zero retryAfter uses the pacer's default backoff.
	Backoff(retryAfter time.Duration)
}
