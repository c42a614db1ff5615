package env

import (
	"os"
	"strings"
)

const prefix = "PIM_"

// Get resolves PIM_<key> first, then the bare key, then fallback.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(prefix + key)); val != "" {
		return val
	}
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// LogFormat is "console" for human-readable local output, "json" otherwise.
func LogFormat() string {
	if strings.EqualFold(Get("LOG_FORMAT", "json"), "console") {
		return "console"
	}
	return "json"
}
