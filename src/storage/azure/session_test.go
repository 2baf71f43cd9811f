package azure

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCredentials(t *testing.T) {
	Convey("Given account credentials", t, func() {
		c := Credentials{AccountName: "src", AccountKey: "a2V5"}

		Convey("the connection string has the standard form", func() {
			So(c.ConnectionString(""), ShouldEqual, "DefaultEndpointsProtocol=https;AccountName=src;AccountKey=a2V5")
			So(c.ConnectionString(DefaultEndpointSuffix), ShouldEqual, "DefaultEndpointsProtocol=https;AccountName=src;AccountKey=a2V5")
		})

		Convey("a sovereign cloud suffix is appended", func() {
			So(c.ConnectionString("core.chinacloudapi.cn"), ShouldEndWith, ";EndpointSuffix=core.chinacloudapi.cn")
		})

		Convey("the service URL uses the blob endpoint", func() {
			So(c.ServiceURL(""), ShouldEqual, "https://src.blob.core.windows.net/")
		})
	})
}

func TestSession(t *testing.T) {
	Convey("Given a session with well-formed keys", t, func() {
		s := NewSession(
			Credentials{AccountName: "src", AccountKey: "c3JjLWtleQ=="},
			Credentials{AccountName: "dst", AccountKey: "ZHN0LWtleQ=="},
			Options{MaxConcurrency: 4},
		)

		Convey("Open builds both services once", func() {
			src1, dst1, err := s.Open()
			So(err, ShouldBeNil)
			So(src1.AccountName(), ShouldEqual, "src")
			So(dst1.AccountName(), ShouldEqual, "dst")

			src2, dst2, err := s.Open()
			So(err, ShouldBeNil)
			So(src2, ShouldPointTo, src1)
			So(dst2, ShouldPointTo, dst1)
		})
	})

	Convey("Given a malformed destination key", t, func() {
		s := NewSession(
			Credentials{AccountName: "src", AccountKey: "c3JjLWtleQ=="},
			Credentials{AccountName: "dst", AccountKey: "not*base64!"},
			Options{},
		)

		Convey("Open fails and keeps failing", func() {
			_, _, err := s.Open()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "opening destination account dst")

			_, _, err2 := s.Open()
			So(err2 == err, ShouldBeTrue)
		})
	})
}

func TestTransport(t *testing.T) {
	Convey("The HTTP transport negotiates HTTP/2", t, func() {
		tr, err := newTransport(128)
		So(err, ShouldBeNil)
		So(tr.MaxIdleConnsPerHost, ShouldEqual, 128)
		So(tr.TLSNextProto, ShouldContainKey, "h2")
	})
}
