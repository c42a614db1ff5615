package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "PIM"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv          = "PIM_APP_ENV"
	EnvPort            = "PIM_APP_PORT"
	EnvLogLevel        = "PIM_LOG_LEVEL"
	EnvUpstreamBaseURL = "PIM_UPSTREAM_BASE_URL"
	EnvUpstreamTimeout = "PIM_UPSTREAM_TIMEOUT"
	EnvRedisURL        = "PIM_REDIS_URL"
	EnvSessionTTL      = "PIM_REDIS_SESSION_TTL"
	EnvStrictLoad      = "PIM_DETAIL_STRICT_LOAD"
	EnvGalleryMaxItems = "PIM_MEDIA_GALLERY_MAX_ITEMS"
	EnvCORSOrigins     = "PIM_CORS_ALLOWED_ORIGINS"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	Media    MediaConfig
	Detail   DetailConfig
	CORS     CORSConfig
	Limits   LimitsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Media.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PIM_APP_ENV" default:"dev"`
	Port         string `envconfig:"PIM_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PIM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PIM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig points at the PIM REST API that owns product and user data.
type UpstreamConfig struct {
	BaseURL   string        `envconfig:"PIM_UPSTREAM_BASE_URL" required:"true"`
	Timeout   time.Duration `envconfig:"PIM_UPSTREAM_TIMEOUT" default:"15s"`
	RateLimit float64       `envconfig:"PIM_UPSTREAM_RATE_LIMIT" default:"20"`
	Burst     int           `envconfig:"PIM_UPSTREAM_BURST" default:"40"`
}

func (u *UpstreamConfig) validate() error {
	parsed, err := url.Parse(u.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid %s %q", EnvUpstreamBaseURL, u.BaseURL)
	}
	u.BaseURL = strings.TrimRight(u.BaseURL, "/")
	if u.RateLimit <= 0 {
		return fmt.Errorf("PIM_UPSTREAM_RATE_LIMIT must be positive")
	}
	if u.Burst <= 0 {
		u.Burst = 1
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PIM_REDIS_URL"`
	Address      string        `envconfig:"PIM_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"PIM_REDIS_PASSWORD"`
	DB           int           `envconfig:"PIM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PIM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PIM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PIM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PIM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PIM_REDIS_WRITE_TIMEOUT" default:"5s"`
	SessionTTL   time.Duration `envconfig:"PIM_REDIS_SESSION_TTL" default:"12h"`
}

// MediaConfig holds the validation ceilings of the three media collections.
type MediaConfig struct {
	GalleryMaxItems    int    `envconfig:"PIM_MEDIA_GALLERY_MAX_ITEMS" default:"10"`
	GalleryMaxBytes    int64  `envconfig:"PIM_MEDIA_GALLERY_MAX_BYTES" default:"204800"`
	GalleryWidth       int    `envconfig:"PIM_MEDIA_GALLERY_WIDTH" default:"500"`
	GalleryHeight      int    `envconfig:"PIM_MEDIA_GALLERY_HEIGHT" default:"500"`
	GalleryMIMETypes   string `envconfig:"PIM_MEDIA_GALLERY_MIME_TYPES" default:"image/jpeg,image/jpg"`
	DocumentMaxItems   int    `envconfig:"PIM_MEDIA_DOCUMENT_MAX_ITEMS" default:"10"`
	DocumentMaxBytes   int64  `envconfig:"PIM_MEDIA_DOCUMENT_MAX_BYTES" default:"5242880"`
	DocumentMIMETypes  string `envconfig:"PIM_MEDIA_DOCUMENT_MIME_TYPES" default:"application/pdf"`
	VideoMaxItems      int    `envconfig:"PIM_MEDIA_VIDEO_MAX_ITEMS" default:"3"`
	UploadMaxFormBytes int64  `envconfig:"PIM_MEDIA_UPLOAD_MAX_FORM_BYTES" default:"67108864"`
}

// GalleryMIMEList splits the configured gallery MIME list.
func (m MediaConfig) GalleryMIMEList() []string {
	return splitList(m.GalleryMIMETypes)
}

// DocumentMIMEList splits the configured documentation MIME list.
func (m MediaConfig) DocumentMIMEList() []string {
	return splitList(m.DocumentMIMETypes)
}

func (m MediaConfig) validate() error {
	if m.GalleryMaxItems <= 0 || m.DocumentMaxItems <= 0 || m.VideoMaxItems <= 0 {
		return fmt.Errorf("media collection ceilings must be positive")
	}
	if len(m.GalleryMIMEList()) == 0 || len(m.DocumentMIMEList()) == 0 {
		return fmt.Errorf("media MIME lists must not be empty")
	}
	return nil
}

// DetailConfig tunes the product-detail sessions.
type DetailConfig struct {
	StrictLoad         bool          `envconfig:"PIM_DETAIL_STRICT_LOAD" default:"false"`
	FixtureMedia       bool          `envconfig:"PIM_DETAIL_FIXTURE_MEDIA" default:"true"`
	NotificationBuffer int           `envconfig:"PIM_DETAIL_NOTIFICATION_BUFFER" default:"64"`
	IdleTTL            time.Duration `envconfig:"PIM_DETAIL_IDLE_TTL" default:"30m"`
	SweepInterval      time.Duration `envconfig:"PIM_DETAIL_SWEEP_INTERVAL" default:"1m"`
}

// LimitsConfig throttles session opening per client IP and per user email.
type LimitsConfig struct {
	SessionWindow     time.Duration `envconfig:"PIM_LIMIT_SESSION_WINDOW" default:"1m"`
	SessionIPLimit    int           `envconfig:"PIM_LIMIT_SESSION_IP" default:"30"`
	SessionEmailLimit int           `envconfig:"PIM_LIMIT_SESSION_EMAIL" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins string `envconfig:"PIM_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

// Origins splits the configured origin list.
func (c CORSConfig) Origins() []string {
	return splitList(c.AllowedOrigins)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
