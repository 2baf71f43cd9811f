package copier

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/edwardsp/AzCopyAllContainers/src/storage"
)

// retry calls fn up to attempts times, waiting attempt×backoff after each failure.
// Missing resources and cancelled contexts are not retried.
func retry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if i == attempts-1 || ctx.Err() != nil || errors.Is(err, storage.ErrNotFound) {
			return err
		}
		wait := time.Duration(i+1) * backoff
		slog.Debug("Retrying after error", "error", err, "backoff", wait)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
	}
	return err
}
