package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the supported formats", t, func() {
		Convey("Then text and json initialize", func() {
			So(Init(FormatText), ShouldBeNil)
			So(Get(), ShouldNotBeNil)
			So(Init(FormatJSON), ShouldBeNil)
			So(Get(), ShouldNotBeNil)
			So(Sync(), ShouldBeNil)
		})

		Convey("Then an unknown format is rejected", func() {
			So(Init("xml"), ShouldNotBeNil)
		})
	})
}

func TestLoggerFields(t *testing.T) {
	Convey("Given a json logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWriter(&buf, FormatJSON), ShouldBeNil)
		So(SetLevelString("info"), ShouldBeNil)

		Convey("When logging through a named logger", func() {
			Named("loader").Info(context.Background(), "stage complete",
				String("kind", "members"),
				Int("rows", 3),
				Bool("has_more", true),
				Duration("took", time.Second),
				Error(errors.New("boom")),
			)

			Convey("Then the record carries every field", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "stage complete")
				So(rec["component"], ShouldEqual, "loader")
				So(rec["kind"], ShouldEqual, "members")
				So(rec["rows"], ShouldEqual, 3)
				So(rec["has_more"], ShouldEqual, true)
				So(rec["error"], ShouldEqual, "boom")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is above the message", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Debug(context.Background(), "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Reset(func() { _ = SetLevelString("info") })
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		for _, lvl := range []string{"debug", "INFO", "", "warning", "warn", "error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}
