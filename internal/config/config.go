package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Bounds is a geographic extent in degrees, used to frame spread rendering.
type Bounds struct {
	MinLon float64
	MaxLon float64
	MinLat float64
	MaxLat float64
}

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	// Endpoint settings. The BBMP server rejects requests that do not carry
	// the browser-looking header set below.
	BaseURL   string
	UserAgent string
	Origin    string
	Referer   string

	// Inclusive zone id range to enumerate.
	ZoneFirst int
	ZoneLast  int

	// Stage output paths.
	WardsCSVPath    string
	RawDataDir      string
	FetchLogPath    string
	CollectionPath  string
	SegmentsCSVPath string
	SpreadPath      string
	AnimationPath   string

	HTTPTimeout time.Duration // zero preserves the no-timeout baseline
	MetricsAddr string        // empty disables the metrics listener
	LogLevel    string
	LogFormat   string

	FrameBounds Bounds
	FrameDelay  time.Duration

	// OperatorDomains maps applicant email domains to operator display names.
	OperatorDomains map[string]string
}

// defaultOperatorDomains is the known BBMP applicant domain table. It can be
// replaced wholesale for another city via OPERATOR_MAP_FILE.
var defaultOperatorDomains = map[string]string{
	"ril.com":                "Reliance Jio",
	"acttv.in":               "ACT TV",
	"vodafone.com":           "Vodafone Idea",
	"airtel.com":             "Bharti Airtel",
	"vodafoneidea.com":       "Vodafone Idea",
	"idea.adityabirla.com":   "Vodafone Idea",
	"tatadocomo.com":         "TATA Docomo",
	"relianceada.com":        "Reliance ADA",
	"tatacommunications.com": "TATA Communications",
	"tataskybb.com":          "TATA Sky Broadband",
	"tatatel.co.in":          "TATA Teleservices",
	"i-on.in":                "i-on",
	"spectranet.in":          "Spectra",
	"actcorp.in":             "ACT Fibernet",
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	zoneFirst, err := envInt("ZONE_FIRST", 1)
	if err != nil {
		return nil, err
	}
	zoneLast, err := envInt("ZONE_LAST", 8)
	if err != nil {
		return nil, err
	}
	timeout, err := envDuration("HTTP_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	frameDelay, err := envDuration("FRAME_DELAY", time.Second)
	if err != nil {
		return nil, err
	}
	bounds, err := loadFrameBounds()
	if err != nil {
		return nil, err
	}
	domains, err := loadOperatorDomains(os.Getenv("OPERATOR_MAP_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:   envOrDefault("BBMP_BASE_URL", "http://bbmp.oasisweb.in/RoadHistory/CitizenView/CitizenViewDemo.aspx"),
		UserAgent: envOrDefault("HTTP_USER_AGENT", "Mozilla/5.0 (Linux; Android 6.0; Nexus 5 Build/MRA58N) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/94.0.4606.81 Mobile Safari/537.36"),
		Origin:    envOrDefault("HTTP_ORIGIN", "http://bbmp.oasisweb.in"),
		Referer:   envOrDefault("HTTP_REFERER", "http://bbmp.oasisweb.in/RoadHistory/CitizenView/CitizenViewDemo.aspx"),

		ZoneFirst: zoneFirst,
		ZoneLast:  zoneLast,

		WardsCSVPath:    envOrDefault("WARDS_CSV_PATH", "zones_wards.csv"),
		RawDataDir:      envOrDefault("RAW_DATA_DIR", "data_raw"),
		FetchLogPath:    envOrDefault("FETCH_LOG_PATH", "get_all_ofc_data.log"),
		CollectionPath:  envOrDefault("COLLECTION_PATH", "bbmp_ofc_data.geojson"),
		SegmentsCSVPath: envOrDefault("SEGMENTS_CSV_PATH", "bbmp_ofc_segments.csv"),
		SpreadPath:      envOrDefault("SPREAD_PATH", "bbmp_ofc_segment_portions.geojson"),
		AnimationPath:   envOrDefault("ANIMATION_PATH", "company_spread.gif"),

		HTTPTimeout: timeout,
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "text"),

		FrameBounds: bounds,
		FrameDelay:  frameDelay,

		OperatorDomains: domains,
	}

	if cfg.BaseURL == "" {
		return nil, errors.New("BBMP_BASE_URL is required")
	}
	if cfg.ZoneFirst < 1 || cfg.ZoneFirst > cfg.ZoneLast {
		return nil, fmt.Errorf("invalid zone range %d..%d", cfg.ZoneFirst, cfg.ZoneLast)
	}
	if cfg.RawDataDir == "" {
		return nil, errors.New("RAW_DATA_DIR is required")
	}
	if len(cfg.OperatorDomains) == 0 {
		return nil, errors.New("operator domain table is empty")
	}
	if cfg.FrameBounds.MinLon >= cfg.FrameBounds.MaxLon || cfg.FrameBounds.MinLat >= cfg.FrameBounds.MaxLat {
		return nil, fmt.Errorf("invalid frame bounds %+v", cfg.FrameBounds)
	}

	return cfg, nil
}

// loadFrameBounds returns the spread frame extent. Defaults cover greater
// Bengaluru so every operator's frame shares the same scale.
func loadFrameBounds() (Bounds, error) {
	minLon, err := envFloat("FRAME_MIN_LON", 77.40)
	if err != nil {
		return Bounds{}, err
	}
	maxLon, err := envFloat("FRAME_MAX_LON", 77.85)
	if err != nil {
		return Bounds{}, err
	}
	minLat, err := envFloat("FRAME_MIN_LAT", 12.78)
	if err != nil {
		return Bounds{}, err
	}
	maxLat, err := envFloat("FRAME_MAX_LAT", 13.25)
	if err != nil {
		return Bounds{}, err
	}
	return Bounds{MinLon: minLon, MaxLon: maxLon, MinLat: minLat, MaxLat: maxLat}, nil
}

// loadOperatorDomains returns the built-in domain table, or the table decoded
// from the given JSON file when a path is configured.
func loadOperatorDomains(path string) (map[string]string, error) {
	if path == "" {
		domains := make(map[string]string, len(defaultOperatorDomains))
		for k, v := range defaultOperatorDomains {
			domains[k] = v
		}
		return domains, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read operator map: %w", err)
	}
	var domains map[string]string
	if err := json.Unmarshal(data, &domains); err != nil {
		return nil, fmt.Errorf("parse operator map %s: %w", path, err)
	}
	return domains, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration", key)
	}
	return d, nil
}
