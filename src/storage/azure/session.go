// Package azure implements storage.Service on Azure Blob Storage.
package azure

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/pkg/errors"
)

// DefaultEndpointSuffix is the public Azure cloud storage suffix.
const DefaultEndpointSuffix = "core.windows.net"

// AzureADKey, given in place of an account key, selects Azure AD authentication.
const AzureADKey = "-"

// Credentials identify one storage account.
type Credentials struct {
	AccountName string
	AccountKey  string
}

// ConnectionString returns the shared-key connection string for c.
func (c Credentials) ConnectionString(suffix string) string {
	s := fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s", c.AccountName, c.AccountKey)
	if suffix != "" && suffix != DefaultEndpointSuffix {
		s += ";EndpointSuffix=" + suffix
	}
	return s
}

// ServiceURL returns the blob endpoint for c.
func (c Credentials) ServiceURL(suffix string) string {
	if suffix == "" {
		suffix = DefaultEndpointSuffix
	}
	return fmt.Sprintf("https://%s.blob.%s/", c.AccountName, suffix)
}

// Options tune the clients built by a Session.
type Options struct {
	EndpointSuffix string

	// MaxConcurrency sizes the HTTP connection pool.
	MaxConcurrency int

	// SDKRetries is the SDK's own per-request retry count; 0 keeps the SDK default.
	SDKRetries int32

	// BlockSize and UploadConcurrency are passed to block blob stream uploads.
	BlockSize         int64
	UploadConcurrency int
}

// Session holds the source and destination services for one run.
// The underlying clients are built on first use and then reused.
type Session struct {
	src, dst Credentials
	opts     Options

	once   sync.Once
	source *Service
	dest   *Service
	err    error
}

// NewSession produces a Session; no client is built until Open.
func NewSession(src, dst Credentials, opts Options) *Session {
	return &Session{src: src, dst: dst, opts: opts}
}

// Open returns the source and destination services, building them on the first call.
func (s *Session) Open() (*Service, *Service, error) {
	s.once.Do(func() {
		s.source, s.err = newService(s.src, s.opts)
		if s.err != nil {
			s.err = errors.Wrapf(s.err, "opening source account %s", s.src.AccountName)
			return
		}
		s.dest, s.err = newService(s.dst, s.opts)
		if s.err != nil {
			s.err = errors.Wrapf(s.err, "opening destination account %s", s.dst.AccountName)
		}
	})
	return s.source, s.dest, s.err
}

// OpenService builds the service of a single account.
func OpenService(c Credentials, opts Options) (*Service, error) {
	svc, err := newService(c, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening account %s", c.AccountName)
	}
	return svc, nil
}

func newService(c Credentials, opts Options) (*Service, error) {
	clientOpts, err := clientOptions(opts)
	if err != nil {
		return nil, err
	}

	var client *azblob.Client
	if c.AccountKey == AzureADKey {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, errors.Wrap(err, "getting Azure AD credential")
		}
		serviceURL := c.ServiceURL(opts.EndpointSuffix)
		slog.Debug("Using Azure AD credential", "serviceUrl", serviceURL)
		client, err = azblob.NewClient(serviceURL, cred, clientOpts)
		if err != nil {
			return nil, err
		}
	} else {
		client, err = azblob.NewClientFromConnectionString(c.ConnectionString(opts.EndpointSuffix), clientOpts)
		if err != nil {
			return nil, err
		}
	}
	return NewService(c.AccountName, client, opts), nil
}
