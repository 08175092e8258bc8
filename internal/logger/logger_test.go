package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: " error ", want: LevelError},
		{in: "loud", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStandardLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewStandardLogger(WithOutput(&buf), WithLevel(LevelWarn),
		WithFormatter(&TextFormatter{DisableTimestamp: true}))

	log.Info("hidden")
	log.Warn("shown %d", 1)

	assert.Equal(t, "[WARN] shown 1\n", buf.String())
}

func TestStandardLogger_WithAppendsFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewStandardLogger(WithOutput(&buf), WithFormatter(&TextFormatter{DisableTimestamp: true}))

	child := log.With(String("asset", "profiles"))
	child.InfoContext(context.Background(), "fetched", Int64("bytes", 42))

	assert.Equal(t, "[INFO] fetched asset=profiles bytes=42\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	log := NewStandardLogger(WithOutput(&buf), WithFormatter(&JSONFormatter{}))

	log.WarnContext(context.Background(), "download failed", String("url", "https://example.invalid"))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "WARN", got["level"])
	assert.Equal(t, "download failed", got["msg"])
	assert.Equal(t, "https://example.invalid", got["url"])
}

func TestColoredLogger_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := NewColoredLogger(WithOutput(&buf))

	log.With(String("k", "v")).Error("boom")

	assert.Contains(t, buf.String(), "[ERROR] boom k=v")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestMockLogger(t *testing.T) {
	log := NewMockLogger()
	log.Info("one")
	log.WarnContext(context.Background(), "two", String("path", "/tmp/x"))

	assert.True(t, log.HasEntry(LevelWarn, "two"))
	assert.False(t, log.HasEntry(LevelInfo, "two"))
	assert.Equal(t, 1, log.CountEntries(LevelInfo))

	entries := log.Entries()
	require.Len(t, entries, 2)
	path, ok := entries[1].Field("path")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/x", path)
}
