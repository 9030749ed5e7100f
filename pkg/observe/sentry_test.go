package observe

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cwa-dashboard/pkg/logger"
)

func newTestHook(captured *[]*sentry.Event) *SentryHook {
	return &SentryHook{
		appZone: "dev",
		appName: "cwa-dashboard",
		capture: func(e *sentry.Event) { *captured = append(*captured, e) },
	}
}

func TestSentryHook_ForwardsErrors(t *testing.T) {
	var captured []*sentry.Event
	h := newTestHook(&captured)

	line := `{"level":"error","msg":"fetch failed","error":"status 503","caller_file":"cwa.go","caller_line":42,"timestamp":"2024-07-01T10-00-00.000+08:00"}`
	n, err := h.Write([]byte(line))

	require.NoError(t, err)
	assert.Equal(t, len(line), n)
	require.Len(t, captured, 1)
	assert.Equal(t, "fetch failed", captured[0].Message)
	assert.Equal(t, sentry.LevelError, captured[0].Level)
	assert.Equal(t, "dev", captured[0].Environment)
	assert.Equal(t, "status 503", captured[0].Extra["Error"])
	assert.Equal(t, 42, captured[0].Extra["CallerLine"])
	assert.True(t, time.Date(2024, 7, 1, 2, 0, 0, 0, time.UTC).Equal(captured[0].Timestamp))
}

func TestSentryHook_TimestampFromLogger(t *testing.T) {
	var captured []*sentry.Event
	h := newTestHook(&captured)

	for _, loc := range []*time.Location{
		time.FixedZone("Asia/Taipei", 8*3600),
		time.UTC,
		time.FixedZone("America/Sao_Paulo", -3*3600),
	} {
		var buf bytes.Buffer
		l := logger.NewZapLogger("cwa-dashboard", []io.Writer{h, &buf}, logger.WithLocation(loc))
		l.Error(errors.New("boom"))

		// the hook must read the zone back, not fall back to the current time
		var entry logEntry
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		_, err := time.Parse(logger.TimestampLayout, entry.Timestamp)
		require.NoError(t, err, entry.Timestamp)
	}

	require.Len(t, captured, 3)
	for _, e := range captured {
		assert.Equal(t, "boom", e.Message)
		assert.WithinDuration(t, time.Now(), e.Timestamp, time.Second)
	}
}

func TestSentryHook_IgnoresLowerLevels(t *testing.T) {
	var captured []*sentry.Event
	h := newTestHook(&captured)

	for _, lvl := range []string{"debug", "info", "warn"} {
		_, err := h.Write([]byte(`{"level":"` + lvl + `","msg":"x"}`))
		require.NoError(t, err)
	}

	assert.Empty(t, captured)
}

func TestSentryHook_SwallowsGarbage(t *testing.T) {
	var captured []*sentry.Event
	h := newTestHook(&captured)

	n, err := h.Write([]byte("not json"))

	assert.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Empty(t, captured)
}

func TestNewSentryHook_RequiresDSN(t *testing.T) {
	_, err := NewSentryHook("dev", "cwa-dashboard", "", false)
	assert.Error(t, err)
}

func TestSentryHook_MapLevel(t *testing.T) {
	h := &SentryHook{}
	assert.Equal(t, sentry.LevelFatal, h.mapLevel(5))
	assert.Equal(t, sentry.LevelWarning, h.mapLevel(1))
}
