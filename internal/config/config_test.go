package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/chapterboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.MemberPageSize, convey.ShouldEqual, 50)
			convey.So(cfg.EventPageSize, convey.ShouldEqual, 25)
			convey.So(cfg.DateRangeDays, convey.ShouldEqual, 365)
			convey.So(cfg.LeaderboardLimit, convey.ShouldEqual, 10)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.DatabaseURL, convey.ShouldBeEmpty)
			convey.So(cfg.RedisURL, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then durations are derived from the numeric fields", func() {
			convey.So(cfg.RefreshPeriod(), convey.ShouldEqual, 5*time.Minute)
			convey.So(cfg.RetryMaxElapsed(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.CacheTTL(), convey.ShouldEqual, 10*time.Minute)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid field", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"unknown level", func(c *config.Config) { c.LogLevel = "loud" }},
			{"unknown format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"zero member page", func(c *config.Config) { c.MemberPageSize = 0 }},
			{"zero event page", func(c *config.Config) { c.EventPageSize = 0 }},
			{"zero range", func(c *config.Config) { c.DateRangeDays = 0 }},
			{"limit above max", func(c *config.Config) { c.LeaderboardLimit = 101 }},
			{"negative refresh", func(c *config.Config) { c.RefreshInterval = -1 }},
			{"negative ttl", func(c *config.Config) { c.CacheTTLSeconds = -1 }},
			{"negative synth size", func(c *config.Config) { c.SynthEvents = -1 }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)

			convey.Convey("Then "+tc.name+" is rejected", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given a disabled scheduler and cache expiry", t, func() {
		cfg := config.New()
		cfg.RefreshInterval = 0
		cfg.CacheTTLSeconds = 0

		convey.Convey("Then the config is still valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
