package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vidrelay/internal/core/domain"
)

const (
	DefaultAddr                = ":8081"
	DefaultExtractTimeout      = 60 * time.Second
	DefaultOriginHeaderTimeout = 30 * time.Second
	DefaultShutdownTimeout     = 15 * time.Second
	DefaultRateBurst           = 20
)

// KnownExtractors lists the backend names accepted in EXTRACTORS.
var KnownExtractors = []string{"ytdlp", "youtube", "html"}

type Config struct {
	Addr      string
	LogLevel  slog.Level
	LogFormat string

	// Extractors is the ordered backend list; the first backend that
	// supports a URL handles it.
	Extractors       []string
	YtDlpPath        string
	YtDlpAutoInstall bool
	YtDlpCookies     string
	Format           string
	AllowPlaylist    bool
	ExtractTimeout   time.Duration

	ProxyURL            string
	OriginHeaderTimeout time.Duration
	Referer             string
	UserAgent           string

	// RateLimit is requests per second across the API routes; 0 disables.
	RateLimit float64
	RateBurst int

	StaticDir       string
	ShutdownTimeout time.Duration
}

// Error reports an invalid environment value.
type Error struct {
	Key   string
	Value string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Key returns the offending key when err is a *Error.
func Key(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Key
	}
	return ""
}

// Load reads the configuration through getenv (os.Getenv in production).
func Load(getenv func(string) string) (Config, error) {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		Addr:                DefaultAddr,
		LogLevel:            slog.LevelInfo,
		LogFormat:           "pretty",
		Extractors:          []string{"ytdlp"},
		Format:              domain.DefaultFormat,
		ExtractTimeout:      DefaultExtractTimeout,
		OriginHeaderTimeout: DefaultOriginHeaderTimeout,
		RateBurst:           DefaultRateBurst,
		ShutdownTimeout:     DefaultShutdownTimeout,
	}

	if v := env("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, &Error{Key: "LOG_LEVEL", Value: v, Err: err}
		}
	}
	if v := env("LOG_FORMAT"); v != "" {
		switch strings.ToLower(v) {
		case "pretty", "json", "text":
			cfg.LogFormat = strings.ToLower(v)
		default:
			return Config{}, &Error{Key: "LOG_FORMAT", Value: v, Err: errors.New("must be pretty, json or text")}
		}
	}

	if v := env("EXTRACTORS"); v != "" {
		names, err := parseExtractors(v)
		if err != nil {
			return Config{}, &Error{Key: "EXTRACTORS", Value: v, Err: err}
		}
		cfg.Extractors = names
	}
	cfg.YtDlpPath = env("YTDLP_PATH")
	cfg.YtDlpCookies = env("YTDLP_COOKIES")
	if v := env("FORMAT"); v != "" {
		cfg.Format = v
	}

	var err error
	if cfg.YtDlpAutoInstall, err = parseBool("YTDLP_AUTO_INSTALL", env("YTDLP_AUTO_INSTALL"), false); err != nil {
		return Config{}, err
	}
	if cfg.AllowPlaylist, err = parseBool("ALLOW_PLAYLIST", env("ALLOW_PLAYLIST"), false); err != nil {
		return Config{}, err
	}
	if cfg.ExtractTimeout, err = parseDuration("EXTRACT_TIMEOUT", env("EXTRACT_TIMEOUT"), cfg.ExtractTimeout); err != nil {
		return Config{}, err
	}
	if cfg.OriginHeaderTimeout, err = parseDuration("ORIGIN_HEADER_TIMEOUT", env("ORIGIN_HEADER_TIMEOUT"), cfg.OriginHeaderTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", env("SHUTDOWN_TIMEOUT"), cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}

	if v := env("HTTP_PROXY_URL"); v != "" {
		u, err := url.Parse(v)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Config{}, &Error{Key: "HTTP_PROXY_URL", Value: v, Err: errors.New("must be an absolute url")}
		}
		cfg.ProxyURL = v
	}
	if v := env("REFERER"); v != "" {
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return Config{}, &Error{Key: "REFERER", Value: v, Err: errors.New("must be an http or https url")}
		}
		cfg.Referer = v
	}
	cfg.UserAgent = env("USER_AGENT")

	if v := env("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return Config{}, &Error{Key: "RATE_LIMIT", Value: v, Err: errors.New("must be a non-negative number")}
		}
		cfg.RateLimit = f
	}
	if v := env("RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, &Error{Key: "RATE_BURST", Value: v, Err: errors.New("must be a positive integer")}
		}
		cfg.RateBurst = n
	}

	cfg.StaticDir = env("STATIC_DIR")
	return cfg, nil
}

func parseExtractors(v string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(v, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if !isKnownExtractor(name) {
			return nil, fmt.Errorf("unknown extractor %q (known: %s)", name, strings.Join(KnownExtractors, ", "))
		}
		if seen[name] {
			return nil, fmt.Errorf("extractor %q listed twice", name)
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, errors.New("at least one extractor is required")
	}
	return names, nil
}

func isKnownExtractor(name string) bool {
	for _, k := range KnownExtractors {
		if k == name {
			return true
		}
	}
	return false
}

func parseBool(key, v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &Error{Key: key, Value: v, Err: err}
	}
	return b, nil
}

func parseDuration(key, v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &Error{Key: key, Value: v, Err: err}
	}
	if d < 0 {
		return 0, &Error{Key: key, Value: v, Err: errors.New("must not be negative")}
	}
	return d, nil
}
