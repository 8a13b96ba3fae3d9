//go:build unit

package config_test

import (
	"testing"
	"time"

	"meeting-scheduler/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "test config is valid", mutate: func(*config.Config) {}},
		{
			name:    "sub-minute duration",
			mutate:  func(c *config.Config) { c.Booking.MeetingDuration = 90 * time.Second },
			wantErr: "BOOKING_MEETING_DURATION",
		},
		{
			name:    "zero duration",
			mutate:  func(c *config.Config) { c.Booking.MeetingDuration = 0 },
			wantErr: "BOOKING_MEETING_DURATION",
		},
		{
			name:    "duration longer than a day",
			mutate:  func(c *config.Config) { c.Booking.MeetingDuration = 25 * time.Hour },
			wantErr: "must not exceed 24h",
		},
		{
			name:    "non-positive lookahead",
			mutate:  func(c *config.Config) { c.Booking.MaxLookahead = 0 },
			wantErr: "BOOKING_MAX_LOOKAHEAD",
		},
		{
			name:    "request timeout not shorter than lock ttl",
			mutate:  func(c *config.Config) { c.Booking.RequestTimeout = c.Booking.LockTTL },
			wantErr: "BOOKING_REQUEST_TIMEOUT",
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *config.Config) { c.Booking.TimeZone = "Mars/Olympus" },
			wantErr: "BOOKING_TIMEZONE",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.NewTestConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_NAME", "scheduler")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Booking.MeetingDuration)
	assert.Equal(t, 72*time.Hour, cfg.Booking.MaxLookahead)
	assert.Equal(t, 90*time.Second, cfg.Booking.LockTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Async)
	assert.Equal(t, time.Second, cfg.Kafka.PublishTimeout)
	assert.Equal(t, "postgres://u:p@localhost:5432/scheduler?sslmode=disable&timezone=UTC", cfg.DB.BuildDSN())
}
