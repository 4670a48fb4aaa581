// The vraw-convert CLI tool converts Voysys .vraw recordings into an
// ISO-media/HEVC file or a raw MJPEG stream, or re-encodes them through
// ffmpeg in the legacy transcode mode.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/voysys/vraw-convert/pkg/convert"
)

var version = "0.2"

func loadConfig(c *cli.Context) (convert.Config, error) {
	config := convert.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		config, err = convert.LoadConfig(path)
		if err != nil {
			return convert.Config{}, err
		}
	}
	if c.IsSet("log-level") || config.LogLevel == "" {
		config.LogLevel = c.String("log-level")
	}
	if c.IsSet("strict-mjpeg") {
		config.StrictMJPEG = c.Bool("strict-mjpeg")
	}

	logLevel, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return convert.Config{}, fmt.Errorf("parse log level: %w", err)
	}
	logrus.SetLevel(logLevel)
	return config, nil
}

func inputPath(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "in.vraw"
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	app := &cli.App{
		Name:    "vraw-convert",
		Usage:   "Converts Voysys .vraw recordings to other formats",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Path to a YAML defaults file"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level (debug, info, warn, error)"},
		},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "Remux a recording into an MP4 (HEVC) or raw MJPEG stream",
				ArgsUsage: "[input.vraw]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file name, derived from the input when empty"},
					&cli.BoolFlag{Name: "strict-mjpeg", Usage: "Skip non-MJPEG frames instead of appending them"},
				},
				Action: func(c *cli.Context) error {
					config, err := loadConfig(c)
					if err != nil {
						return err
					}
					_, err = convert.Convert(inputPath(c), c.String("output"), convert.Options{
						StrictMJPEG: config.StrictMJPEG,
					})
					return err
				},
			},
			{
				Name:      "transcode",
				Usage:     "Re-encode a recording through ffmpeg (legacy mode)",
				ArgsUsage: "[input.vraw]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file name, derived from the input when empty"},
					&cli.StringFlag{Name: "ffmpeg-bin", Usage: "Path to the ffmpeg binary"},
					&cli.StringFlag{Name: "ffmpeg-args", Usage: "Extra ffmpeg output arguments, space separated"},
					&cli.IntFlag{Name: "framerate", Aliases: []string{"f"}, Usage: "Input framerate"},
					&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: "x264 preset"},
					&cli.IntFlag{Name: "crf", Usage: "x264 crf value"},
				},
				Action: func(c *cli.Context) error {
					config, err := loadConfig(c)
					if err != nil {
						return err
					}
					if c.IsSet("ffmpeg-bin") {
						config.FFmpegBin = c.String("ffmpeg-bin")
					}
					if c.IsSet("ffmpeg-args") {
						config.FFmpegArgs = c.String("ffmpeg-args")
					}
					if c.IsSet("framerate") {
						config.Framerate = c.Int("framerate")
					}
					if c.IsSet("preset") {
						config.Preset = c.String("preset")
					}
					if c.IsSet("crf") {
						config.CRF = c.Int("crf")
					}
					return convert.Transcode(inputPath(c), c.String("output"), config)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Errorf("application error: %v", err)
		os.Exit(1)
	}
}
