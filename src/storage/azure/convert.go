package azure

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/edwardsp/AzCopyAllContainers/src/storage"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return to.Ptr(s)
}

func toSDKMetadata(md storage.Metadata) map[string]*string {
	out := make(map[string]*string, len(md))
	for k, v := range md {
		out[k] = to.Ptr(v)
	}
	return out
}

// fromSDKMetadata keeps "absent" distinct from "empty".
func fromSDKMetadata(m map[string]*string) storage.Metadata {
	if m == nil {
		return nil
	}
	out := make(storage.Metadata, len(m))
	for k, v := range m {
		out[k] = deref(v)
	}
	return out
}

func toSDKAccess(a storage.PublicAccess) *container.PublicAccessType {
	if a == storage.AccessPrivate {
		return nil
	}
	return to.Ptr(container.PublicAccessType(a))
}

func fromSDKAccess(p *container.PublicAccessType) storage.PublicAccess {
	if p == nil {
		return storage.AccessPrivate
	}
	return storage.PublicAccess(*p)
}

func toSDKIdentifiers(ids []storage.SignedIdentifier) []*container.SignedIdentifier {
	if len(ids) == 0 {
		return nil
	}
	out := make([]*container.SignedIdentifier, 0, len(ids))
	for _, id := range ids {
		out = append(out, &container.SignedIdentifier{
			ID: to.Ptr(id.ID),
			AccessPolicy: &container.AccessPolicy{
				Start:      id.Start,
				Expiry:     id.Expiry,
				Permission: ptrOrNil(id.Permission),
			},
		})
	}
	return out
}

func fromSDKIdentifiers(ids []*container.SignedIdentifier) []storage.SignedIdentifier {
	var out []storage.SignedIdentifier
	for _, id := range ids {
		if id == nil {
			continue
		}
		si := storage.SignedIdentifier{ID: deref(id.ID)}
		if p := id.AccessPolicy; p != nil {
			si.Start = p.Start
			si.Expiry = p.Expiry
			si.Permission = deref(p.Permission)
		}
		out = append(out, si)
	}
	return out
}

func toSDKHeaders(h storage.Headers) blob.HTTPHeaders {
	return blob.HTTPHeaders{
		BlobCacheControl:       ptrOrNil(h.CacheControl),
		BlobContentDisposition: ptrOrNil(h.ContentDisposition),
		BlobContentEncoding:    ptrOrNil(h.ContentEncoding),
		BlobContentLanguage:    ptrOrNil(h.ContentLanguage),
		BlobContentMD5:         h.ContentMD5,
		BlobContentType:        ptrOrNil(h.ContentType),
	}
}

func fromSDKProperties(resp blob.GetPropertiesResponse) *storage.BlobProperties {
	props := &storage.BlobProperties{
		Headers: &storage.Headers{
			CacheControl:       deref(resp.CacheControl),
			ContentDisposition: deref(resp.ContentDisposition),
			ContentEncoding:    deref(resp.ContentEncoding),
			ContentLanguage:    deref(resp.ContentLanguage),
			ContentMD5:         resp.ContentMD5,
			ContentType:        deref(resp.ContentType),
		},
		Metadata: fromSDKMetadata(resp.Metadata),
	}
	if resp.ContentLength != nil {
		props.Size = *resp.ContentLength
	}
	return props
}
