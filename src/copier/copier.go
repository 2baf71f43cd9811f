// Package copier replicates every container and blob of one storage account into another.
package copier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/edwardsp/AzCopyAllContainers/src/progress"
	"github.com/edwardsp/AzCopyAllContainers/src/storage"
)

// Options control a copy run.
type Options struct {
	// Concurrency bounds the number of blobs copied at once within a container.
	// Zero or less means unbounded.
	Concurrency int

	// MaxRetries is the number of attempts per blob; values below 1 mean 1.
	MaxRetries int

	// RetryBackoff is multiplied by the attempt number between attempts.
	RetryBackoff time.Duration

	// Resume skips destination blobs that already match their source.
	Resume bool

	// Verify re-lists every destination container after copying it.
	Verify bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Concurrency:  16,
		MaxRetries:   3,
		RetryBackoff: time.Second,
	}
}

// Copier copies from a source service into a destination service.
type Copier struct {
	src, dst storage.Service
	opts     Options
	out      io.Writer
	progress *progress.Reporter
	metrics  *Metrics
}

// New produces a Copier writing console output to out.
func New(src, dst storage.Service, out io.Writer, opts Options) *Copier {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	return &Copier{
		src:      src,
		dst:      dst,
		opts:     opts,
		out:      out,
		progress: progress.New(out),
		metrics:  NewMetrics(),
	}
}

// Metrics returns the run's metrics.
func (c *Copier) Metrics() *Metrics {
	return c.metrics
}

// Run copies every source container, one after another.
// The first error aborts the run; whatever was already written stays written.
func (c *Copier) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Creating BLOB Storage's containers ...")

	var containers []storage.ContainerInfo
	err := c.src.ListContainers(ctx, func(info storage.ContainerInfo) error {
		containers = append(containers, info)
		return nil
	})
	if err != nil {
		return err
	}
	slog.Debug("Listed source containers", "account", c.src.AccountName(), "count", len(containers))

	start := time.Now()
	for _, info := range containers {
		if info.Deleted {
			slog.Info("Skipping soft-deleted container", "container", info.Name)
			continue
		}
		if err := c.CopyContainer(ctx, info); err != nil {
			return err
		}
	}
	c.metrics.Log(time.Since(start))
	return nil
}

// CopyContainer replicates one container's permissions and metadata, then its blobs.
func (c *Copier) CopyContainer(ctx context.Context, info storage.ContainerInfo) error {
	srcC := c.src.Container(info.Name)
	policy, err := srcC.GetAccessPolicy(ctx)
	if err != nil {
		return err
	}

	dstC := c.dst.Container(info.Name)
	created, err := dstC.CreateIfNotExists(ctx, policy.Public)
	if err != nil {
		return err
	}
	if err := dstC.SetAccessPolicy(ctx, policy); err != nil {
		return err
	}
	if info.Metadata != nil {
		if err := dstC.SetMetadata(ctx, info.Metadata); err != nil {
			return err
		}
	}
	slog.Debug("Replicated container", "container", info.Name, "created", created, "access", policy.Public, "policies", len(policy.Identifiers))

	fmt.Fprintf(c.out, "\nCONTAINER \"%s\" was created. Copying BLOBs ...\n", info.Name)
	if err := c.copyBlobs(ctx, srcC, dstC); err != nil {
		return errors.Wrapf(err, "copying blobs of container %s", info.Name)
	}
	c.metrics.Containers.Inc(1)

	if c.opts.Verify {
		return c.verify(ctx, srcC, dstC)
	}
	return nil
}

func listBlobs(ctx context.Context, c storage.Container) ([]storage.BlobInfo, error) {
	var items []storage.BlobInfo
	err := c.ListBlobs(ctx, func(info storage.BlobInfo) error {
		items = append(items, info)
		return nil
	})
	return items, err
}
