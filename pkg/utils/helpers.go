package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a duration string like "24h", falling back to def
// when d is empty.
func ParseDuration(d string, def time.Duration) (time.Duration, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return def, nil
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", d, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", d)
	}
	return duration, nil
}

// GetEnv returns the trimmed value of key, or def when it is unset or blank.
func GetEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func GetEnvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return i, nil
}

func GetEnvBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return b, nil
}

func GetEnvDuration(key string, def time.Duration) (time.Duration, error) {
	d, err := ParseDuration(os.Getenv(key), def)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
