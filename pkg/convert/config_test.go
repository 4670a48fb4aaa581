package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		raw := `
logLevel: debug
strictMjpeg: true
framerate: 60
`
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

		config, err := LoadConfig(path)
		require.NoError(t, err)

		expected := Config{
			LogLevel:    "debug",
			StrictMJPEG: true,
			FFmpegBin:   "ffmpeg",
			Framerate:   60,
			Preset:      "veryfast",
			CRF:         23,
		}
		require.Equal(t, expected, config)
	})
	t.Run("missing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nil.yaml"))
		require.Error(t, err)
	})
	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

		_, err := LoadConfig(path)
		require.Error(t, err)
	})
}
