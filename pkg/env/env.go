package env

import "os"

// Get reads an environment variable, falling back when unset or empty.
// For the handful of knobs (PORT, LOG_FORMAT) read outside pkg/config.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
