package azure

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUploadError(t *testing.T) {
	Convey("Given an upload failure", t, func() {
		cause := errors.New("400 InvalidQueryParameterValue")

		Convey("a base blob names the blob", func() {
			err := uploadError("a.png", "", cause)
			So(err.Error(), ShouldEqual, "uploading blob a.png: 400 InvalidQueryParameterValue")
			So(errors.Is(err, cause), ShouldBeTrue)
		})

		Convey("a snapshot says it cannot be written in place", func() {
			err := uploadError("a.png", "2024-01-01T00:00:00.0000000Z", cause)
			So(err.Error(), ShouldStartWith, "uploading snapshot 2024-01-01T00:00:00.0000000Z of blob a.png")
			So(err.Error(), ShouldContainSubstring, "snapshots cannot be written in place")
			So(errors.Is(err, cause), ShouldBeTrue)
		})

		Convey("success stays nil", func() {
			So(uploadError("a.png", "snap", nil), ShouldBeNil)
		})
	})
}
