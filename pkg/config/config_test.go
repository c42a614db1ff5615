package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" || !cfg.App.IsProd() {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Upstream.BaseURL != "https://pim.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout != 15*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.Upstream.Timeout)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
	if cfg.Redis.SessionTTL != 2*time.Hour {
		t.Fatalf("expected session ttl 2h, got %v", cfg.Redis.SessionTTL)
	}
	if !cfg.Detail.StrictLoad {
		t.Fatalf("expected strict load")
	}
}

func TestLoad_MediaDefaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	m := cfg.Media
	if m.GalleryMaxItems != 10 || m.GalleryMaxBytes != 200*1024 {
		t.Fatalf("unexpected gallery limits %+v", m)
	}
	if m.GalleryWidth != 500 || m.GalleryHeight != 500 {
		t.Fatalf("unexpected gallery dimensions %dx%d", m.GalleryWidth, m.GalleryHeight)
	}
	if got := m.GalleryMIMEList(); len(got) != 2 || got[0] != "image/jpeg" || got[1] != "image/jpg" {
		t.Fatalf("unexpected gallery mime list %v", got)
	}
	if m.DocumentMaxBytes != 5*1024*1024 {
		t.Fatalf("unexpected document max bytes %d", m.DocumentMaxBytes)
	}
	if m.VideoMaxItems != 3 {
		t.Fatalf("unexpected video max %d", m.VideoMaxItems)
	}
	if cfg.Limits.SessionWindow != time.Minute || cfg.Limits.SessionEmailLimit != 10 {
		t.Fatalf("unexpected session limits %+v", cfg.Limits)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvUpstreamBaseURL); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvUpstreamBaseURL, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsRelativeUpstream(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvUpstreamBaseURL, "/v1")

	if _, err := Load(); err == nil {
		t.Fatal("expected relative base url to be rejected")
	}
}

func TestLoad_RejectsZeroCeiling(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvGalleryMaxItems, "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected zero ceiling to be rejected")
	}
}

func TestCORSOrigins(t *testing.T) {
	c := CORSConfig{AllowedOrigins: " https://a.example.com, ,https://b.example.com"}
	got := c.Origins()
	if len(got) != 2 || got[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", got)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvUpstreamBaseURL, "https://pim.example.com/")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvSessionTTL, "2h")
	t.Setenv(EnvStrictLoad, "true")
}
