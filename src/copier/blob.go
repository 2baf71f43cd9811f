package copier

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"golang.org/x/sync/errgroup"

	"github.com/edwardsp/AzCopyAllContainers/src/progress"
	"github.com/edwardsp/AzCopyAllContainers/src/storage"
)

// copyBlobs copies every blob of srcC into dstC concurrently.
// After the first failure no further blobs are scheduled.
func (c *Copier) copyBlobs(ctx context.Context, srcC, dstC storage.Container) error {
	items, err := listBlobs(ctx, srcC)
	if err != nil {
		return err
	}

	tracker := c.progress.Start(len(items))
	g, gctx := errgroup.WithContext(ctx)
	if c.opts.Concurrency > 0 {
		g.SetLimit(c.opts.Concurrency)
	}
	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		item := item
		g.Go(func() error {
			_, err := c.copyBlob(gctx, srcC, dstC, item, tracker)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		tracker.Abort()
		return err
	}
	tracker.Close()
	return nil
}

// CopyBlob copies a single listed blob (or snapshot) from srcC into dstC.
// It reports false when the blob was skipped as unchanged.
func (c *Copier) CopyBlob(ctx context.Context, srcC, dstC storage.Container, item storage.BlobInfo) (bool, error) {
	return c.copyBlob(ctx, srcC, dstC, item, nil)
}

func (c *Copier) copyBlob(ctx context.Context, srcC, dstC storage.Container, item storage.BlobInfo, tracker *progress.Tracker) (bool, error) {
	src, err := srcC.Blob(item.Name, item.Snapshot)
	if err != nil {
		return false, err
	}
	props, err := src.Properties(ctx)
	if err != nil {
		return false, err
	}
	dst, err := dstC.Blob(src.Name(), src.Snapshot())
	if err != nil {
		return false, err
	}

	if tracker != nil {
		tracker.Started(item.Name)
	}

	if c.opts.Resume {
		same, err := unchanged(ctx, dst, props)
		if err != nil {
			return false, err
		}
		if same {
			slog.Debug("Skipping unchanged blob", "container", srcC.Name(), "blob", item.Name, "snapshot", item.Snapshot)
			c.metrics.Skipped.Inc(1)
			if tracker != nil {
				tracker.Completed()
			}
			return false, nil
		}
	}

	start := time.Now()
	attempt := 0
	err = retry(ctx, c.opts.MaxRetries, c.opts.RetryBackoff, func() error {
		attempt++
		if attempt > 1 {
			c.metrics.Retries.Inc(1)
		}
		return c.transfer(ctx, src, dst, props)
	})
	if err != nil {
		return false, errors.Wrapf(err, "copying blob %s", item.Name)
	}
	c.metrics.BlobTime.UpdateSince(start)
	c.metrics.Blobs.Inc(1)
	if tracker != nil {
		tracker.Completed()
	}
	return true, nil
}

// transfer streams src into dst, then applies the source's content properties and metadata.
func (c *Copier) transfer(ctx context.Context, src, dst storage.Blob, props *storage.BlobProperties) error {
	r, err := src.OpenRead(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := dst.Upload(ctx, countingReader{r: r, m: c.metrics.Bytes}); err != nil {
		return err
	}
	if props.Headers != nil {
		if err := dst.SetHeaders(ctx, *props.Headers); err != nil {
			return err
		}
	}
	if props.Metadata != nil {
		if err := dst.SetMetadata(ctx, props.Metadata); err != nil {
			return err
		}
	}
	return nil
}

// unchanged reports whether dst already holds src's content, properties and metadata.
// Without a source Content-MD5 the content cannot be compared, so the blob is copied again.
func unchanged(ctx context.Context, dst storage.Blob, src *storage.BlobProperties) (bool, error) {
	if src.Headers == nil || len(src.Headers.ContentMD5) == 0 {
		return false, nil
	}
	got, err := dst.Properties(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return got.Size == src.Size && src.Headers.Equal(got.Headers) && src.Metadata.Equal(got.Metadata), nil
}

type countingReader struct {
	r io.Reader
	m metrics.Meter
}

func (cr countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.m.Mark(int64(n))
	}
	return n, err
}
