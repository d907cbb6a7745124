package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/kronos/server/timezone"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where kronos stores pending resolutions
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// DefaultTimezone is used when a request names no timezone.
	DefaultTimezone string
	// PreferFuture and IntervalToDate are the default finalize policy.
	PreferFuture   bool
	IntervalToDate bool

	CacheSize    int           // KRONOS_CACHE_SIZE (default: 1000)
	CacheTTL     time.Duration // KRONOS_CACHE_TTL (default: 10m)
	MatchTimeout time.Duration // KRONOS_MATCH_TIMEOUT (default: 250ms)

	RateLimit        float64 // KRONOS_RATE_LIMIT requests per second per client (default: 20)
	RateBurst        int     // KRONOS_RATE_BURST (default: 40)
	BatchConcurrency int     // KRONOS_BATCH_CONCURRENCY (default: 4)

	// PendingTTL is how long stored pending resolutions are kept (default: 24h).
	PendingTTL time.Duration
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes the profile and fills defaults.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", p.Driver)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	if p.Driver == "sqlite" && p.DSN == "" {
		if p.Mode == "prod" && p.Data == "" {
			p.Data = "/var/opt/kronos"
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("kronos_%s.db", p.Mode))
	}

	if !timezone.IsValidTimezone(p.DefaultTimezone) {
		return errors.Errorf("invalid default timezone %q", p.DefaultTimezone)
	}

	if p.CacheSize <= 0 {
		p.CacheSize = 1000
	}
	if p.CacheTTL <= 0 {
		p.CacheTTL = 10 * time.Minute
	}
	if p.MatchTimeout <= 0 {
		p.MatchTimeout = 250 * time.Millisecond
	}
	if p.RateLimit <= 0 {
		p.RateLimit = 20
	}
	if p.RateBurst <= 0 {
		p.RateBurst = int(2 * p.RateLimit)
	}
	if p.BatchConcurrency <= 0 {
		p.BatchConcurrency = 4
	}
	if p.PendingTTL <= 0 {
		p.PendingTTL = 24 * time.Hour
	}
	return nil
}
