package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// FileTimestampLayout is used when a timestamp becomes part of a file name.
const FileTimestampLayout = "20060102_150405"

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// FileTimestamp formats t for use inside a file name.
func FileTimestamp(t time.Time) string {
	return t.Format(FileTimestampLayout)
}
