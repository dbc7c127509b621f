// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/media-batch/pkg/types"
)

func TestNew_JSONWithRunID(t *testing.T) {
	var buf bytes.Buffer
	log := New(types.LogConfig{Level: "info", Format: "json"}, &buf)

	ctx := WithRunID(context.Background(), "run-123")
	log.InfoContext(ctx, "processed", "path", "/in/a.png")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "processed", entry["msg"])
	assert.Equal(t, "/in/a.png", entry["path"])
	assert.Equal(t, "run-123", entry["run_id"])
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(types.LogConfig{Level: "warn", Format: "text"}, &buf)

	log.Info("hidden")
	log.With("component", "scan").Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "component=scan")
	assert.NotContains(t, out, "run_id")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestRunID_Empty(t *testing.T) {
	assert.Equal(t, "", RunID(context.Background()))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("dropped") })
}
