package azure

import (
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
	"github.com/pkg/errors"

	"github.com/edwardsp/AzCopyAllContainers/src/storage"
)

var _ storage.Service = &Service{}

// Service is an Azure storage account's blob service.
type Service struct {
	name   string
	client *service.Client
	opts   Options
}

// NewService wraps an azblob client.
func NewService(name string, client *azblob.Client, opts Options) *Service {
	return &Service{name: name, client: client.ServiceClient(), opts: opts}
}

// AccountName implements storage.Service.
func (s *Service) AccountName() string { return s.name }

// ListContainers implements storage.Service.
// Soft-deleted containers are listed with Deleted set; system containers are not listed.
func (s *Service) ListContainers(ctx context.Context, f func(storage.ContainerInfo) error) error {
	pager := s.client.NewListContainersPager(&service.ListContainersOptions{
		Include: service.ListContainersInclude{Metadata: true, Deleted: true},
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return errors.Wrapf(err, "listing containers of %s", s.name)
		}
		for _, item := range page.ContainerItems {
			if item == nil || item.Name == nil {
				continue
			}
			err := f(storage.ContainerInfo{
				Name:     *item.Name,
				Metadata: fromSDKMetadata(item.Metadata),
				Deleted:  item.Deleted != nil && *item.Deleted,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Container implements storage.Service.
func (s *Service) Container(name string) storage.Container {
	return &Container{
		name:   name,
		client: s.client.NewContainerClient(name),
		opts:   s.opts,
	}
}

// Container is a handle on an Azure blob container.
type Container struct {
	name   string
	client *container.Client
	opts   Options
}

// Name implements storage.Container.
func (c *Container) Name() string { return c.name }

// GetAccessPolicy implements storage.Container.
func (c *Container) GetAccessPolicy(ctx context.Context) (storage.AccessPolicy, error) {
	resp, err := c.client.GetAccessPolicy(ctx, nil)
	if err != nil {
		return storage.AccessPolicy{}, notFound(errors.Wrapf(err, "getting access policy of container %s", c.name), err)
	}
	return storage.AccessPolicy{
		Public:      fromSDKAccess(resp.BlobPublicAccess),
		Identifiers: fromSDKIdentifiers(resp.SignedIdentifiers),
	}, nil
}

// SetAccessPolicy implements storage.Container.
func (c *Container) SetAccessPolicy(ctx context.Context, policy storage.AccessPolicy) error {
	_, err := c.client.SetAccessPolicy(ctx, &container.SetAccessPolicyOptions{
		Access:       toSDKAccess(policy.Public),
		ContainerACL: toSDKIdentifiers(policy.Identifiers),
	})
	return errors.Wrapf(err, "setting access policy of container %s", c.name)
}

// CreateIfNotExists implements storage.Container.
func (c *Container) CreateIfNotExists(ctx context.Context, access storage.PublicAccess) (bool, error) {
	_, err := c.client.Create(ctx, &container.CreateOptions{Access: toSDKAccess(access)})
	if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "creating container %s", c.name)
	}
	return true, nil
}

// SetMetadata implements storage.Container.
func (c *Container) SetMetadata(ctx context.Context, md storage.Metadata) error {
	_, err := c.client.SetMetadata(ctx, &container.SetMetadataOptions{Metadata: toSDKMetadata(md)})
	return errors.Wrapf(err, "setting metadata of container %s", c.name)
}

// Delete implements storage.Container.
func (c *Container) Delete(ctx context.Context) error {
	_, err := c.client.Delete(ctx, nil)
	if err != nil {
		return notFound(errors.Wrapf(err, "deleting container %s", c.name), err)
	}
	return nil
}

// ListBlobs implements storage.Container.
// Snapshots are included; uncommitted and soft-deleted blobs are not.
func (c *Container) ListBlobs(ctx context.Context, f func(storage.BlobInfo) error) error {
	pager := c.client.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{
		Include: container.ListBlobsInclude{Snapshots: true, Metadata: true, Copy: true},
	})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return notFound(errors.Wrapf(err, "listing blobs of container %s", c.name), err)
		}
		for _, item := range resp.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			info := storage.BlobInfo{Name: *item.Name, Snapshot: deref(item.Snapshot)}
			if item.Properties != nil && item.Properties.ContentLength != nil {
				info.Size = *item.Properties.ContentLength
			}
			if err := f(info); err != nil {
				return err
			}
		}
	}
	return nil
}

// Blob implements storage.Container.
func (c *Container) Blob(name, snapshot string) (storage.Blob, error) {
	bb := c.client.NewBlockBlobClient(name)
	if snapshot != "" {
		var err error
		bb, err = bb.WithSnapshot(snapshot)
		if err != nil {
			return nil, errors.Wrapf(err, "addressing snapshot %s of blob %s", snapshot, name)
		}
	}
	return &Blob{name: name, snapshot: snapshot, block: bb, opts: c.opts}, nil
}

// Blob is a handle on an Azure blob, addressed as a block blob for uploads.
type Blob struct {
	name, snapshot string
	block          *blockblob.Client
	opts           Options
}

// Name implements storage.Blob.
func (b *Blob) Name() string { return b.name }

// Snapshot implements storage.Blob.
func (b *Blob) Snapshot() string { return b.snapshot }

// Properties implements storage.Blob.
func (b *Blob) Properties(ctx context.Context) (*storage.BlobProperties, error) {
	resp, err := b.block.BlobClient().GetProperties(ctx, &blob.GetPropertiesOptions{})
	if err != nil {
		return nil, notFound(errors.Wrapf(err, "getting properties of blob %s", b.name), err)
	}
	return fromSDKProperties(resp), nil
}

// OpenRead implements storage.Blob.
func (b *Blob) OpenRead(ctx context.Context) (io.ReadCloser, error) {
	resp, err := b.block.BlobClient().DownloadStream(ctx, nil)
	if err != nil {
		return nil, notFound(errors.Wrapf(err, "opening blob %s", b.name), err)
	}
	return resp.NewRetryReader(ctx, &blob.RetryReaderOptions{MaxRetries: 3}), nil
}

// Upload implements storage.Blob.
func (b *Blob) Upload(ctx context.Context, r io.Reader) error {
	_, err := b.block.UploadStream(ctx, r, &blockblob.UploadStreamOptions{
		BlockSize:   b.opts.BlockSize,
		Concurrency: b.opts.UploadConcurrency,
	})
	return uploadError(b.name, b.snapshot, err)
}

// uploadError names the blob in an upload failure. The service rejects writes
// addressed to a snapshot, so those failures say so.
func uploadError(name, snapshot string, err error) error {
	if err == nil {
		return nil
	}
	if snapshot != "" {
		return errors.Wrapf(err, "uploading snapshot %s of blob %s (snapshots cannot be written in place)", snapshot, name)
	}
	return errors.Wrapf(err, "uploading blob %s", name)
}

// SetHeaders implements storage.Blob.
func (b *Blob) SetHeaders(ctx context.Context, h storage.Headers) error {
	_, err := b.block.BlobClient().SetHTTPHeaders(ctx, toSDKHeaders(h), nil)
	return errors.Wrapf(err, "setting properties of blob %s", b.name)
}

// SetMetadata implements storage.Blob.
func (b *Blob) SetMetadata(ctx context.Context, md storage.Metadata) error {
	_, err := b.block.BlobClient().SetMetadata(ctx, toSDKMetadata(md), nil)
	return errors.Wrapf(err, "setting metadata of blob %s", b.name)
}

// notFound maps the service's not-found codes onto storage.ErrNotFound.
func notFound(wrapped, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound) {
		return errors.Wrap(storage.ErrNotFound, wrapped.Error())
	}
	return wrapped
}
