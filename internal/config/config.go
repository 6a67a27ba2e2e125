package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Data sources, tried in this order.
	SheetsID      string
	SheetsAPIKey  string
	SheetsRange   string
	SheetsBaseURL string
	MirrorURL     string
	LocalDataPath string
	DataField     string
	SourceTimeout time.Duration

	AvatarDir string
	AvatarExt string

	DefaultBasemap string

	// Camera.
	FlyToZoom         float64
	FlyToSpeed        float64
	PopupOffsetRatio  float64
	RotationDegPerSec float64
	FitBoundsEnabled  bool
	FrameInterval     time.Duration

	// Memory pill cycle.
	PillDwell time.Duration
	PillFade  time.Duration
	PillHold  time.Duration
	PillGap   time.Duration

	// InitialQuery is the deep-link query string applied on start.
	InitialQuery string

	// ConsoleEnabled attaches the line-command console to stdin. Quitting
	// the console stops the service.
	ConsoleEnabled bool
	ConsoleVerbose bool

	// Interaction telemetry. Disabled when no brokers are set.
	KafkaBrokers        []string
	KafkaTelemetryTopic string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

const (
	defaultSheetsBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"
	defaultMirrorURL     = "https://raw.githubusercontent.com/yohman/kiseki/refs/heads/main/sheets_data.json"
)

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SheetsID:      os.Getenv("SHEETS_ID"),
		SheetsAPIKey:  os.Getenv("SHEETS_API_KEY"),
		SheetsRange:   sharedcfg.EnvOrDefault("SHEETS_RANGE", "map"),
		SheetsBaseURL: sharedcfg.EnvOrDefault("SHEETS_BASE_URL", defaultSheetsBaseURL),
		MirrorURL:     sharedcfg.EnvOrDefault("MIRROR_URL", defaultMirrorURL),
		LocalDataPath: sharedcfg.EnvOrDefault("LOCAL_DATA_PATH", "sheets_data.json"),
		DataField:     sharedcfg.EnvOrDefault("DATA_FIELD", "map"),

		AvatarDir: sharedcfg.EnvOrDefault("AVATAR_DIR", "images/avatars/"),
		AvatarExt: sharedcfg.EnvOrDefault("AVATAR_EXT", ".png"),

		DefaultBasemap: sharedcfg.EnvOrDefault("DEFAULT_BASEMAP", "esri-world-imagery"),
		InitialQuery:   os.Getenv("INITIAL_QUERY"),

		KafkaBrokers:        sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTelemetryTopic: sharedcfg.EnvOrDefault("KAFKA_TELEMETRY_TOPIC", "memory-map-interactions"),
	}

	durations := []struct {
		key       string
		fallback  string
		dst       *time.Duration
		allowZero bool
	}{
		{"SOURCE_TIMEOUT", "15s", &cfg.SourceTimeout, true},
		{"FRAME_INTERVAL", "16ms", &cfg.FrameInterval, false},
		{"PILL_DWELL", "3s", &cfg.PillDwell, false},
		{"PILL_FADE", "1s", &cfg.PillFade, true},
		{"PILL_HOLD", "6s", &cfg.PillHold, false},
		{"PILL_GAP", "4s", &cfg.PillGap, false},
		{"MAPBOX_TIMEOUT", "5s", &cfg.MapboxTimeout, false},
	}
	for _, d := range durations {
		v, err := parseDuration(d.key, d.fallback, d.allowZero)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	floats := []struct {
		key      string
		fallback string
		dst      *float64
	}{
		{"FLY_TO_ZOOM", "16", &cfg.FlyToZoom},
		{"FLY_TO_SPEED", "0.5", &cfg.FlyToSpeed},
		{"POPUP_OFFSET_RATIO", "0.25", &cfg.PopupOffsetRatio},
		{"ROTATION_DEG_PER_SEC", "6", &cfg.RotationDegPerSec},
	}
	for _, f := range floats {
		v, err := parsePositiveFloat(f.key, f.fallback)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	cfg.FitBoundsEnabled, err = parseBool("FIT_BOUNDS_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg.ConsoleEnabled, err = parseBool("CONSOLE_ENABLED", false)
	if err != nil {
		return nil, err
	}
	cfg.ConsoleVerbose, err = parseBool("CONSOLE_VERBOSE", false)
	if err != nil {
		return nil, err
	}

	cfg.MapboxToken = os.Getenv("MAPBOX_TOKEN")
	cfg.MapboxEnabled = cfg.MapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		cfg.MapboxEnabled = v == "true"
	}
	cfg.MapboxCacheSize = parseMapboxCacheSize()

	if cfg.PopupOffsetRatio > 1 {
		return nil, errors.New("invalid POPUP_OFFSET_RATIO: must be at most 1")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTelemetryTopic == "" {
		return nil, errors.New("KAFKA_TELEMETRY_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// SheetsConfigured reports whether the primary source has what it needs.
func (c *Config) SheetsConfigured() bool {
	return c.SheetsID != "" && c.SheetsAPIKey != ""
}

// TelemetryEnabled reports whether interaction events go to Kafka.
func (c *Config) TelemetryEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseDuration(key, fallback string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveFloat(key, fallback string) (float64, error) {
	f, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, fallback), 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return f, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
