package convert

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config tool defaults, optionally loaded from a YAML file.
type Config struct {
	LogLevel    string `yaml:"logLevel"`
	StrictMJPEG bool   `yaml:"strictMjpeg"`

	// Legacy transcode mode.
	FFmpegBin  string `yaml:"ffmpegBin"`
	FFmpegArgs string `yaml:"ffmpegArgs"` // Extra output arguments.
	Framerate  int    `yaml:"framerate"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		FFmpegBin: "ffmpeg",
		Framerate: 30,
		Preset:    "veryfast",
		CRF:       23,
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return config, nil
}
