package main

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	Convey("Given the command line", t, func() {
		var stdout, stderr bytes.Buffer

		Convey("too few arguments print the usage and fail", func() {
			code := run([]string{"src", "key"}, nil, &stdout, &stderr)
			So(code, ShouldEqual, 1)
			So(stdout.String(), ShouldContainSubstring, "sourceAccount sourceKey destAccount destKey")
			So(stdout.String(), ShouldContainSubstring, "-concurrency")
			So(stdout.String(), ShouldNotContainSubstring, "Error:")
		})

		Convey("-version prints the version", func() {
			code := run([]string{"-version"}, nil, &stdout, &stderr)
			So(code, ShouldEqual, 0)
			So(stdout.String(), ShouldEqual, "Version: dev\n")
		})

		Convey("an unknown flag fails", func() {
			code := run([]string{"-bogus", "a", "b", "c", "d"}, nil, &stdout, &stderr)
			So(code, ShouldEqual, 1)
			So(stderr.String(), ShouldContainSubstring, "bogus")
		})

		Convey("a malformed account key is reported as an error", func() {
			code := run([]string{"-nowait", "src", "not*base64!", "dst", "ZHN0LWtleQ=="}, nil, &stdout, &stderr)
			So(code, ShouldEqual, 1)
			So(stdout.String(), ShouldStartWith, "Accessing Azure Storages ...\n")
			So(stdout.String(), ShouldContainSubstring, "Error: opening source account src")
			So(stdout.String(), ShouldNotContainSubstring, "All Succeeded.")
		})

		Convey("an unreadable config file is reported as an error", func() {
			code := run([]string{"-config", "/nonexistent/config.yaml", "a", "b", "c", "d"}, nil, &stdout, &stderr)
			So(code, ShouldEqual, 1)
			So(stdout.String(), ShouldContainSubstring, "Error: reading config file /nonexistent/config.yaml")
			So(stdout.String(), ShouldNotContainSubstring, "Accessing Azure Storages")
		})
	})
}

func TestParseArgs(t *testing.T) {
	Convey("Given four positional arguments", t, func() {
		var stdout, stderr bytes.Buffer

		Convey("defaults apply when no flag is set", func() {
			inv, err := parseArgs([]string{"a", "b", "c", "d"}, &stdout, &stderr)
			So(err, ShouldBeNil)
			So(inv.args, ShouldResemble, []string{"a", "b", "c", "d"})
			So(inv.config, ShouldResemble, DefaultConfig())
			So(inv.stats, ShouldBeFalse)
		})

		Convey("flags are applied", func() {
			inv, err := parseArgs([]string{"-concurrency", "0", "-resume", "-stats", "a", "b", "c", "d"}, &stdout, &stderr)
			So(err, ShouldBeNil)
			So(inv.config.MaxConcurrency, ShouldEqual, 0)
			So(inv.config.Resume, ShouldBeTrue)
			So(inv.stats, ShouldBeTrue)
		})

		Convey("a missing config file is an error", func() {
			_, err := parseArgs([]string{"-config", "/nonexistent/config.yaml", "a", "b", "c", "d"}, &stdout, &stderr)
			So(err, ShouldNotBeNil)
		})
	})
}
