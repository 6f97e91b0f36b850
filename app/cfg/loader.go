package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath    string `long:"db-path" env:"DB_PATH" default:"./data/menhub.db" description:"SQLite database file for feed fetch status"`
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the response cache (optional)"`
	CacheTTL  int    `long:"cache-ttl" env:"CACHE_TTL" default:"300" description:"Response cache TTL in seconds"`

	// Application configuration
	FeedsDir          string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed configuration files"`
	VocabularyFile    string `long:"vocabulary" env:"VOCABULARY_FILE" description:"YAML file overriding the built-in vocabulary (optional)"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for feed processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for feed administration (optional)"`

	// Aggregation defaults
	WindowDays int `long:"window-days" env:"WINDOW_DAYS" default:"7" description:"Default lookback window in days"`
	MaxResults int `long:"max-results" env:"MAX_RESULTS" default:"120" description:"Default number of records per collection"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Menhub Monitor/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"Asia/Jakarta" description:"Timezone for log timestamps (e.g., UTC, Asia/Jakarta)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load reads flags and environment. A .env file in the working directory is applied first
// and never overrides variables that are already set.
func Load() (*Cfg, error) {
	_ = godotenv.Load()

	return load(nil)
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		RedisAddr:         raw.RedisAddr,
		CacheTTL:          raw.CacheTTL,
		FeedsDir:          raw.FeedsDir,
		VocabularyFile:    raw.VocabularyFile,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		WindowDays:        raw.WindowDays,
		MaxResults:        raw.MaxResults,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func (c *Cfg) validate() error {
	positive := map[string]int{
		"worker count":       c.WorkerCount,
		"scheduler interval": c.SchedulerInterval,
		"window days":        c.WindowDays,
		"max results":        c.MaxResults,
	}

	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, value)
		}
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must be non-negative, got %d", c.CacheTTL)
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}

	time.Local = loc
	slog.Debug("Timezone configured", "timezone", timezone)
	return nil
}
