package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enimaloc/distoornament/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{in: "", want: zerolog.InfoLevel},
		{in: "debug", want: zerolog.DebugLevel},
		{in: " WARNING ", want: zerolog.WarnLevel},
		{in: "error", want: zerolog.ErrorLevel},
		{in: "loud", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLevel(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	var out bytes.Buffer
	l, err := newLogger(config.Log{Level: "warn", NoColor: true}, &out)
	require.NoError(t, err)
	defer l.Close()

	l.Info().Msg("hidden")
	l.Warn().Str("command", "ping").Msg("shown")

	assert.Empty(t, l.Path())
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
	assert.Contains(t, out.String(), "command=ping")
}

func TestNew_RotatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var out bytes.Buffer
	l, err := newLogger(config.Log{Dir: dir, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1, NoColor: true}, &out)
	require.NoError(t, err)

	l.Info().Str("trigger", "p").Msg("command executed")
	require.NoError(t, l.Close())

	assert.Equal(t, filepath.Join(dir, fileName), l.Path())
	assert.Contains(t, out.String(), "command executed")

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "p", entry["trigger"])
	assert.Equal(t, "command executed", entry["message"])
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := newLogger(config.Log{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = newLogger(config.Log{Dir: t.TempDir()}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid log config")
}
