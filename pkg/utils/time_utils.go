package utils

import (
	"time"
)

// MillisToTime converts milliseconds since epoch to time.Time
func MillisToTime(millis int64) time.Time {
	return time.UnixMilli(millis)
}

// FormatMillis formats epoch milliseconds in RFC 3339
func FormatMillis(millis int64) string {
	return MillisToTime(millis).UTC().Format(time.RFC3339)
}
