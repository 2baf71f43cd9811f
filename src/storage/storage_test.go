package storage

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMetadata(t *testing.T) {
	Convey("Metadata", t, func() {
		Convey("Clone keeps nil as nil", func() {
			var m Metadata
			So(m.Clone(), ShouldBeNil)
		})

		Convey("Clone is independent of the original", func() {
			m := Metadata{"a": "1"}
			c := m.Clone()
			c["a"] = "2"
			So(m["a"], ShouldEqual, "1")
		})

		Convey("Equal treats absent and empty alike", func() {
			So(Metadata(nil).Equal(Metadata{}), ShouldBeTrue)
			So(Metadata{"a": "1"}.Equal(Metadata{"a": "1"}), ShouldBeTrue)
			So(Metadata{"a": "1"}.Equal(Metadata{"a": "2"}), ShouldBeFalse)
			So(Metadata{"a": "1"}.Equal(Metadata{"b": "1"}), ShouldBeFalse)
		})
	})
}

func TestHeadersEqual(t *testing.T) {
	Convey("Headers.Equal", t, func() {
		a := &Headers{ContentType: "image/png", ContentMD5: []byte{1, 2}}
		b := &Headers{ContentType: "image/png", ContentMD5: []byte{1, 2}}
		So(a.Equal(b), ShouldBeTrue)

		b.ContentMD5 = []byte{1, 3}
		So(a.Equal(b), ShouldBeFalse)

		So(a.Equal(nil), ShouldBeFalse)
		So((*Headers)(nil).Equal(nil), ShouldBeTrue)
	})
}
