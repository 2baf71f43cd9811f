package azure

import (
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/edwardsp/AzCopyAllContainers/src/storage"
)

func TestConvert(t *testing.T) {
	Convey("Metadata conversion keeps absent distinct from empty", t, func() {
		So(fromSDKMetadata(nil), ShouldBeNil)
		So(fromSDKMetadata(map[string]*string{}), ShouldNotBeNil)
		So(fromSDKMetadata(map[string]*string{"env": to.Ptr("prod")}), ShouldResemble, storage.Metadata{"env": "prod"})
		So(*toSDKMetadata(storage.Metadata{"env": "prod"})["env"], ShouldEqual, "prod")
	})

	Convey("Private access maps to no access header", t, func() {
		So(toSDKAccess(storage.AccessPrivate), ShouldBeNil)
		So(*toSDKAccess(storage.AccessContainer), ShouldEqual, container.PublicAccessTypeContainer)
		So(fromSDKAccess(nil), ShouldEqual, storage.AccessPrivate)
		So(fromSDKAccess(to.Ptr(container.PublicAccessTypeBlob)), ShouldEqual, storage.AccessBlob)
	})

	Convey("Stored access policies round trip", t, func() {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		ids := []storage.SignedIdentifier{{ID: "read", Start: &start, Permission: "r"}}
		So(fromSDKIdentifiers(toSDKIdentifiers(ids)), ShouldResemble, ids)
		So(toSDKIdentifiers(nil), ShouldBeNil)
	})

	Convey("Blob properties carry the six content headers", t, func() {
		props := fromSDKProperties(blob.GetPropertiesResponse{
			CacheControl:  to.Ptr("no-cache"),
			ContentType:   to.Ptr("image/png"),
			ContentMD5:    []byte{1, 2, 3},
			ContentLength: to.Ptr(int64(42)),
		})
		So(props.Size, ShouldEqual, 42)
		So(props.Metadata, ShouldBeNil)
		So(props.Headers.ContentType, ShouldEqual, "image/png")
		So(props.Headers.CacheControl, ShouldEqual, "no-cache")

		h := toSDKHeaders(*props.Headers)
		So(*h.BlobContentType, ShouldEqual, "image/png")
		So(h.BlobContentMD5, ShouldResemble, []byte{1, 2, 3})
		So(h.BlobContentLanguage, ShouldBeNil)
	})
}
