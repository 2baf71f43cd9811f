// Package storage defines the blob-service operations the copier needs from an
// object-storage account. Implementations live in the azure and mem subpackages.
package storage

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned (possibly wrapped) when a container or blob does not exist.
var ErrNotFound = errors.New("not found")

// Metadata is a container's or blob's user metadata.
// A nil Metadata means the collection is absent, which is not the same as empty.
type Metadata map[string]string

// Clone returns a copy of m; nil stays nil.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Equal reports whether m and other hold the same pairs.
// Absent and empty compare equal.
func (m Metadata) Equal(other Metadata) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// PublicAccess is a container's anonymous read access level.
type PublicAccess string

const (
	AccessPrivate   PublicAccess = ""
	AccessBlob      PublicAccess = "blob"
	AccessContainer PublicAccess = "container"
)

// SignedIdentifier is a stored access policy on a container.
type SignedIdentifier struct {
	ID         string
	Start      *time.Time
	Expiry     *time.Time
	Permission string
}

// AccessPolicy is everything a container's permissions consist of.
type AccessPolicy struct {
	Public      PublicAccess
	Identifiers []SignedIdentifier
}

// Headers are the standard content properties of a blob.
type Headers struct {
	CacheControl       string
	ContentDisposition string
	ContentEncoding    string
	ContentLanguage    string
	ContentMD5         []byte
	ContentType        string
}

// Equal reports whether h and other carry the same content properties.
func (h *Headers) Equal(other *Headers) bool {
	if h == nil || other == nil {
		return h == other
	}
	return h.CacheControl == other.CacheControl &&
		h.ContentDisposition == other.ContentDisposition &&
		h.ContentEncoding == other.ContentEncoding &&
		h.ContentLanguage == other.ContentLanguage &&
		h.ContentType == other.ContentType &&
		bytes.Equal(h.ContentMD5, other.ContentMD5)
}

// ContainerInfo is one entry of a container listing.
type ContainerInfo struct {
	Name     string
	Metadata Metadata

	// Deleted marks a soft-deleted container, which can be neither read nor recreated.
	Deleted bool
}

// BlobInfo is one entry of a flat blob listing.
// Snapshot is empty for the base blob.
type BlobInfo struct {
	Name     string
	Snapshot string
	Size     int64
}

// BlobProperties is the authoritative state of a single blob.
type BlobProperties struct {
	Size     int64
	Headers  *Headers
	Metadata Metadata
}

// Service is the blob service of one storage account.
type Service interface {
	AccountName() string

	// ListContainers calls f for every container in the account, with metadata.
	ListContainers(ctx context.Context, f func(ContainerInfo) error) error

	// Container returns a handle on the named container; it need not exist.
	Container(name string) Container
}

// Container is a handle on one container of a Service.
type Container interface {
	Name() string

	GetAccessPolicy(ctx context.Context) (AccessPolicy, error)
	SetAccessPolicy(ctx context.Context, policy AccessPolicy) error

	// CreateIfNotExists creates the container with the given public access level.
	// It reports whether the container was created.
	CreateIfNotExists(ctx context.Context, access PublicAccess) (bool, error)

	// SetMetadata replaces the container's metadata.
	SetMetadata(ctx context.Context, md Metadata) error

	Delete(ctx context.Context) error

	// ListBlobs calls f for every blob and snapshot in the container.
	ListBlobs(ctx context.Context, f func(BlobInfo) error) error

	// Blob returns a handle on the named blob, qualified by snapshot when non-empty.
	Blob(name, snapshot string) (Blob, error)
}

// Blob is a handle on one blob (or blob snapshot).
type Blob interface {
	Name() string
	Snapshot() string

	// Properties fetches the blob's properties. A missing blob yields ErrNotFound.
	Properties(ctx context.Context) (*BlobProperties, error)

	OpenRead(ctx context.Context) (io.ReadCloser, error)

	// Upload overwrites the blob's content with everything read from r.
	Upload(ctx context.Context, r io.Reader) error

	SetHeaders(ctx context.Context, h Headers) error
	SetMetadata(ctx context.Context, md Metadata) error
}
