// Package mem implements an in-memory storage.Service, used for testing the copier.
package mem

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/edwardsp/AzCopyAllContainers/src/storage"
)

var _ storage.Service = &Service{}

// Service is an in-memory storage account.
type Service struct {
	name string

	mu         sync.Mutex
	containers map[string]*containerState
	deleted    map[string]storage.Metadata

	// FailUpload, when set, is consulted before every upload.
	// A non-nil result fails the upload after half of the content has been read.
	FailUpload func(container, blob, snapshot string) error
}

type containerState struct {
	policy   storage.AccessPolicy
	metadata storage.Metadata
	blobs    map[blobKey]*blobState
}

type blobKey struct {
	name, snapshot string
}

type blobState struct {
	data     []byte
	headers  *storage.Headers
	metadata storage.Metadata
}

// New produces an empty Service for the named account.
func New(name string) *Service {
	return &Service{
		name:       name,
		containers: make(map[string]*containerState),
		deleted:    make(map[string]storage.Metadata),
	}
}

// AccountName implements storage.Service.
func (s *Service) AccountName() string { return s.name }

// AddContainer creates (or replaces) a container directly.
func (s *Service) AddContainer(name string, policy storage.AccessPolicy, md storage.Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers[name] = &containerState{
		policy:   policy,
		metadata: md.Clone(),
		blobs:    make(map[blobKey]*blobState),
	}
}

// AddDeletedContainer records a soft-deleted container. It appears in listings
// with Deleted set but cannot otherwise be reached.
func (s *Service) AddDeletedContainer(name string, md storage.Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted[name] = md.Clone()
}

// PutBlob stores a blob directly. The container must exist.
func (s *Service) PutBlob(container, name, snapshot string, data []byte, h *storage.Headers, md storage.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.containers[container]
	if !ok {
		return errors.Wrapf(storage.ErrNotFound, "container %s", container)
	}
	b := &blobState{
		data:     append([]byte(nil), data...),
		metadata: md.Clone(),
	}
	if h != nil {
		hh := *h
		b.headers = &hh
	}
	c.blobs[blobKey{name: name, snapshot: snapshot}] = b
	return nil
}

// ContainerState returns a copy of a container's access policy and metadata.
func (s *Service) ContainerState(name string) (storage.AccessPolicy, storage.Metadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.containers[name]
	if !ok {
		return storage.AccessPolicy{}, nil, false
	}
	return c.policy, c.metadata.Clone(), true
}

// BlobContent returns a copy of a blob's bytes.
func (s *Service) BlobContent(container, name, snapshot string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.lookupBlob(container, name, snapshot)
	if err != nil {
		return nil, false
	}
	return append([]byte(nil), b.data...), true
}

// BlobCount reports how many blobs and snapshots a container holds.
func (s *Service) BlobCount(container string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.containers[container]
	if !ok {
		return 0
	}
	return len(c.blobs)
}

// ListContainers implements storage.Service.
func (s *Service) ListContainers(ctx context.Context, f func(storage.ContainerInfo) error) error {
	s.mu.Lock()
	infos := make([]storage.ContainerInfo, 0, len(s.containers))
	for name, c := range s.containers {
		infos = append(infos, storage.ContainerInfo{Name: name, Metadata: c.metadata.Clone()})
	}
	for name, md := range s.deleted {
		infos = append(infos, storage.ContainerInfo{Name: name, Metadata: md.Clone(), Deleted: true})
	}
	s.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Name != infos[j].Name {
			return infos[i].Name < infos[j].Name
		}
		return !infos[i].Deleted && infos[j].Deleted
	})
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f(info); err != nil {
			return err
		}
	}
	return nil
}

// Container implements storage.Service.
func (s *Service) Container(name string) storage.Container {
	return &Container{s: s, name: name}
}

func (s *Service) lookupContainer(name string) (*containerState, error) {
	c, ok := s.containers[name]
	if !ok {
		return nil, errors.Wrapf(storage.ErrNotFound, "container %s", name)
	}
	return c, nil
}

func (s *Service) lookupBlob(container, name, snapshot string) (*blobState, error) {
	c, err := s.lookupContainer(container)
	if err != nil {
		return nil, err
	}
	b, ok := c.blobs[blobKey{name: name, snapshot: snapshot}]
	if !ok {
		return nil, errors.Wrapf(storage.ErrNotFound, "blob %s/%s", container, name)
	}
	return b, nil
}

// Container is a handle on a container of a Service.
type Container struct {
	s    *Service
	name string
}

// Name implements storage.Container.
func (c *Container) Name() string { return c.name }

// GetAccessPolicy implements storage.Container.
func (c *Container) GetAccessPolicy(ctx context.Context) (storage.AccessPolicy, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	st, err := c.s.lookupContainer(c.name)
	if err != nil {
		return storage.AccessPolicy{}, err
	}
	p := st.policy
	p.Identifiers = append([]storage.SignedIdentifier(nil), st.policy.Identifiers...)
	return p, nil
}

// SetAccessPolicy implements storage.Container.
func (c *Container) SetAccessPolicy(ctx context.Context, policy storage.AccessPolicy) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	st, err := c.s.lookupContainer(c.name)
	if err != nil {
		return err
	}
	st.policy = storage.AccessPolicy{
		Public:      policy.Public,
		Identifiers: append([]storage.SignedIdentifier(nil), policy.Identifiers...),
	}
	return nil
}

// CreateIfNotExists implements storage.Container.
func (c *Container) CreateIfNotExists(ctx context.Context, access storage.PublicAccess) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.containers[c.name]; ok {
		return false, nil
	}
	c.s.containers[c.name] = &containerState{
		policy: storage.AccessPolicy{Public: access},
		blobs:  make(map[blobKey]*blobState),
	}
	return true, nil
}

// SetMetadata implements storage.Container.
func (c *Container) SetMetadata(ctx context.Context, md storage.Metadata) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	st, err := c.s.lookupContainer(c.name)
	if err != nil {
		return err
	}
	st.metadata = md.Clone()
	return nil
}

// Delete implements storage.Container.
func (c *Container) Delete(ctx context.Context) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, err := c.s.lookupContainer(c.name); err != nil {
		return err
	}
	delete(c.s.containers, c.name)
	return nil
}

// ListBlobs implements storage.Container.
// Entries come in name order, snapshots before the base blob.
func (c *Container) ListBlobs(ctx context.Context, f func(storage.BlobInfo) error) error {
	c.s.mu.Lock()
	st, err := c.s.lookupContainer(c.name)
	if err != nil {
		c.s.mu.Unlock()
		return err
	}
	infos := make([]storage.BlobInfo, 0, len(st.blobs))
	for k, b := range st.blobs {
		infos = append(infos, storage.BlobInfo{Name: k.name, Snapshot: k.snapshot, Size: int64(len(b.data))})
	}
	c.s.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		a, b := infos[i], infos[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Snapshot == "" || b.Snapshot == "" {
			return b.Snapshot == ""
		}
		return a.Snapshot < b.Snapshot
	})
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f(info); err != nil {
			return err
		}
	}
	return nil
}

// Blob implements storage.Container.
func (c *Container) Blob(name, snapshot string) (storage.Blob, error) {
	return &Blob{s: c.s, container: c.name, name: name, snapshot: snapshot}, nil
}

// Blob is a handle on a blob of a Service.
type Blob struct {
	s                         *Service
	container, name, snapshot string
}

// Name implements storage.Blob.
func (b *Blob) Name() string { return b.name }

// Snapshot implements storage.Blob.
func (b *Blob) Snapshot() string { return b.snapshot }

// Properties implements storage.Blob.
func (b *Blob) Properties(ctx context.Context) (*storage.BlobProperties, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	st, err := b.s.lookupBlob(b.container, b.name, b.snapshot)
	if err != nil {
		return nil, err
	}
	props := &storage.BlobProperties{
		Size:     int64(len(st.data)),
		Metadata: st.metadata.Clone(),
	}
	if st.headers != nil {
		h := *st.headers
		props.Headers = &h
	}
	return props, nil
}

// OpenRead implements storage.Blob.
func (b *Blob) OpenRead(ctx context.Context) (io.ReadCloser, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	st, err := b.s.lookupBlob(b.container, b.name, b.snapshot)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(append([]byte(nil), st.data...))), nil
}

// Upload implements storage.Blob.
// Like a block blob upload, the new content replaces the old content, headers and metadata.
func (b *Blob) Upload(ctx context.Context, r io.Reader) error {
	if b.s.FailUpload != nil {
		if err := b.s.FailUpload(b.container, b.name, b.snapshot); err != nil {
			buf := make([]byte, 512)
			r.Read(buf) // consume part of the stream
			return err
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "reading upload content for %s", b.name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	c, err := b.s.lookupContainer(b.container)
	if err != nil {
		return err
	}
	c.blobs[blobKey{name: b.name, snapshot: b.snapshot}] = &blobState{data: data}
	return nil
}

// SetHeaders implements storage.Blob.
func (b *Blob) SetHeaders(ctx context.Context, h storage.Headers) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	st, err := b.s.lookupBlob(b.container, b.name, b.snapshot)
	if err != nil {
		return err
	}
	h.ContentMD5 = append([]byte(nil), h.ContentMD5...)
	st.headers = &h
	return nil
}

// SetMetadata implements storage.Blob.
func (b *Blob) SetMetadata(ctx context.Context, md storage.Metadata) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	st, err := b.s.lookupBlob(b.container, b.name, b.snapshot)
	if err != nil {
		return err
	}
	st.metadata = md.Clone()
	return nil
}
