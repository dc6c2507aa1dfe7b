package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfiguration marks a missing or malformed startup setting. It is fatal.
var ErrConfiguration = errors.New("configuration error")

// Env variable names (documented for reference)
const (
	envVersion       = "APP_VERSION"
	envLogLevel      = "LOG_LEVEL"
	envBotToken      = "MAIN_BOT_TOKEN"
	envAdminIDs      = "ADMIN_IDS"   // comma-separated user ids
	envManagerIDs    = "MANAGER_IDS" // comma-separated user ids
	envBackend       = "STORAGE_BACKEND"
	envDataDir       = "DATA_DIR"
	envDBPath        = "DB_PATH"
	envPostgresDSN   = "POSTGRES_DSN"
	envSeedSampleAds = "SEED_SAMPLE_ADS"
	envMetricsAddr   = "METRICS_ADDR"   // empty disables the endpoint
	envStatsInterval = "STATS_INTERVAL" // Go duration string, e.g. "1m"
	envWatchInterval = "WATCH_INTERVAL"
	envActiveWindow  = "ACTIVE_WINDOW"
	envNotifyRate    = "NOTIFY_RATE" // notifications per second
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config aggregates all runtime settings required by the application.
// All fields are immutable after MustLoad().
//
// Defaults let the service start locally with only MAIN_BOT_TOKEN set.
// A .env file in the working directory is read first when present; real
// environment variables win over it.
//
//	MAIN_BOT_TOKEN=xxxxx STORAGE_BACKEND=sqlite go run ./cmd/sales-bot
type Config struct {
	Version       string        // app semantic version or git SHA
	LogLevel      string        // debug, info, warn, error, fatal (zap levels)
	BotToken      string        // messaging platform bot token
	AdminIDs      []int64       // users allowed to manage the bot
	ManagerIDs    []int64       // users allowed to moderate ads
	Backend       string        // memory, json, sqlite, postgres
	DataDir       string        // directory of JSON documents
	DBPath        string        // path to SQLite file
	PostgresDSN   string        // required for the postgres backend
	SeedSampleAds bool          // seed demo ads on empty storage
	MetricsAddr   string        // listen address for Prometheus endpoint
	StatsInterval time.Duration // statistics refresh period
	WatchInterval time.Duration // subscription watcher period
	ActiveWindow  time.Duration // window for the active users gauge
	NotifyRate    float64       // notification sends per second
}

var (
	defaultVersion       = "dev"
	defaultLogLevel      = "info"
	defaultBackend       = BackendJSON
	defaultDataDir       = "data"
	defaultDBPath        = "data/sales.db"
	defaultMetricsAddr   = ":8080"
	defaultStatsInterval = time.Minute
	defaultWatchInterval = 30 * time.Second
	defaultActiveWindow  = 7 * 24 * time.Hour
	defaultNotifyRate    = 25.0
)

// MustLoad is a convenience wrapper around Load() that panics on error.
// Preferable in main() early startup where configuration problems are fatal.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads environment variables, applies defaults, validates the result
// and returns a ready-to-use Config instance.
func Load() (Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	var cfg Config
	var err error

	cfg.Version = getEnv(envVersion, defaultVersion)
	cfg.LogLevel = getEnv(envLogLevel, defaultLogLevel)
	cfg.BotToken = strings.TrimSpace(os.Getenv(envBotToken)) // required, no default
	cfg.Backend = strings.ToLower(getEnv(envBackend, defaultBackend))
	cfg.DataDir = getEnv(envDataDir, defaultDataDir)
	cfg.DBPath = getEnv(envDBPath, defaultDBPath)
	cfg.PostgresDSN = os.Getenv(envPostgresDSN)
	cfg.MetricsAddr = lookupEnv(envMetricsAddr, defaultMetricsAddr)

	if cfg.AdminIDs, err = parseIDList(envAdminIDs, os.Getenv(envAdminIDs)); err != nil {
		return Config{}, err
	}
	if cfg.ManagerIDs, err = parseIDList(envManagerIDs, os.Getenv(envManagerIDs)); err != nil {
		return Config{}, err
	}
	if cfg.SeedSampleAds, err = parseBool(envSeedSampleAds, true); err != nil {
		return Config{}, err
	}
	if cfg.StatsInterval, err = parseDuration(envStatsInterval, defaultStatsInterval); err != nil {
		return Config{}, err
	}
	if cfg.WatchInterval, err = parseDuration(envWatchInterval, defaultWatchInterval); err != nil {
		return Config{}, err
	}
	if cfg.ActiveWindow, err = parseDuration(envActiveWindow, defaultActiveWindow); err != nil {
		return Config{}, err
	}
	if s := os.Getenv(envNotifyRate); s != "" {
		cfg.NotifyRate, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: invalid %s: %v", ErrConfiguration, envNotifyRate, err)
		}
	} else {
		cfg.NotifyRate = defaultNotifyRate
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required settings and value ranges.
func (c Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("%w: %s is required", ErrConfiguration, envBotToken)
	}
	switch c.Backend {
	case BackendMemory, BackendJSON, BackendSQLite:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: %s is required for the postgres backend", ErrConfiguration, envPostgresDSN)
		}
	default:
		return fmt.Errorf("%w: unknown %s %q", ErrConfiguration, envBackend, c.Backend)
	}
	if c.StatsInterval < time.Second || c.WatchInterval < time.Second {
		return fmt.Errorf("%w: intervals must be >= 1s", ErrConfiguration)
	}
	if c.ActiveWindow <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrConfiguration, envActiveWindow)
	}
	if c.NotifyRate <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrConfiguration, envNotifyRate)
	}
	return nil
}

// IsAdmin reports whether the user id is listed in ADMIN_IDS.
func (c Config) IsAdmin(id int64) bool {
	return slices.Contains(c.AdminIDs, id)
}

// IsManager reports whether the user id is listed in MANAGER_IDS. Admins are
// not implicitly managers.
func (c Config) IsManager(id int64) bool {
	return slices.Contains(c.ManagerIDs, id)
}

// getEnv returns the value of the environment variable if set, otherwise def.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// lookupEnv is like getEnv but keeps an explicitly empty value.
func lookupEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func parseIDList(key, value string) ([]int64, error) {
	var ids []int64
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s entry %q", ErrConfiguration, key, item)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: invalid %s: %v", ErrConfiguration, key, err)
	}
	return b, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s: %v", ErrConfiguration, key, err)
	}
	return d, nil
}
