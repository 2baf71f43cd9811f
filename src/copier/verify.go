package copier

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/edwardsp/AzCopyAllContainers/src/storage"
)

type blobID struct {
	name, snapshot string
}

func (id blobID) String() string {
	if id.snapshot == "" {
		return id.name
	}
	return id.name + "?snapshot=" + id.snapshot
}

func sizes(ctx context.Context, c storage.Container) (map[blobID]int64, error) {
	out := make(map[blobID]int64)
	err := c.ListBlobs(ctx, func(info storage.BlobInfo) error {
		out[blobID{name: info.Name, snapshot: info.Snapshot}] = info.Size
		return nil
	})
	return out, err
}

// verify checks that every source blob exists in the destination with the same size.
func (c *Copier) verify(ctx context.Context, srcC, dstC storage.Container) error {
	want, err := sizes(ctx, srcC)
	if err != nil {
		return err
	}
	got, err := sizes(ctx, dstC)
	if err != nil {
		return err
	}

	var bad []string
	for id, size := range want {
		gs, ok := got[id]
		switch {
		case !ok:
			bad = append(bad, id.String()+" (missing)")
		case gs != size:
			bad = append(bad, id.String()+" (size differs)")
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return errors.Errorf("verifying container %s: %d of %d blobs do not match: %s",
			srcC.Name(), len(bad), len(want), strings.Join(bad, ", "))
	}
	slog.Debug("Verified container", "container", srcC.Name(), "blobs", len(want))
	return nil
}
