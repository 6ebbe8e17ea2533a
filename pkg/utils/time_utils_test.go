package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMillisToTime(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	assert.True(t, MillisToTime(ts.UnixMilli()).Equal(ts))
}

func TestFormatMillis(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2026-01-02T03:04:05Z", FormatMillis(ts.UnixMilli()))
}
