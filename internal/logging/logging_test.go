package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Config{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("drain finished", "synced", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "drain finished", line["msg"])
	assert.EqualValues(t, 3, line["synced"])
}

func TestNew_RotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "inked.log")
	logger, closer, err := New(Config{Level: "debug", File: path, MaxSizeMB: 1}, os.Stderr)
	require.NoError(t, err)

	logger.Debug("to file", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, string(data), "k=v")
}

func TestNew_UnknownFormat(t *testing.T) {
	_, _, err := New(Config{Format: "xml"}, os.Stderr)
	assert.Error(t, err)
}
