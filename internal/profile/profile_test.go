package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{Mode: "bogus", Data: dir}
	require.NoError(t, p.Validate())

	assert.Equal(t, "demo", p.Mode)
	assert.Equal(t, "sqlite", p.Driver)
	assert.Equal(t, filepath.Join(dir, "kronos_demo.db"), p.DSN)
	assert.Equal(t, 1000, p.CacheSize)
	assert.Equal(t, 10*time.Minute, p.CacheTTL)
	assert.Equal(t, 250*time.Millisecond, p.MatchTimeout)
	assert.Equal(t, 20.0, p.RateLimit)
	assert.Equal(t, 40, p.RateBurst)
	assert.Equal(t, 4, p.BatchConcurrency)
	assert.Equal(t, 24*time.Hour, p.PendingTTL)
	assert.True(t, p.IsDev())
}

func TestValidate_KeepsExplicitValues(t *testing.T) {
	p := &Profile{
		Mode:            "prod",
		Driver:          "sqlite",
		DSN:             "/tmp/explicit.db",
		DefaultTimezone: "US/Pacific",
		CacheSize:       5,
		RateLimit:       2,
	}
	require.NoError(t, p.Validate())

	assert.Equal(t, "/tmp/explicit.db", p.DSN)
	assert.Equal(t, 5, p.CacheSize)
	assert.Equal(t, 4, p.RateBurst)
	assert.False(t, p.IsDev())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
	}{
		{"unknown driver", Profile{Driver: "mysql", DSN: "x"}},
		{"postgres without dsn", Profile{Driver: "postgres"}},
		{"missing data dir", Profile{Driver: "sqlite", Data: filepath.Join(os.TempDir(), "kronos-does-not-exist")}},
		{"bad timezone", Profile{Driver: "sqlite", DSN: "x.db", DefaultTimezone: "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			assert.Error(t, p.Validate())
		})
	}
}
