package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/voysys/vraw-convert/pkg/ffmpeg"
	"github.com/voysys/vraw-convert/pkg/vraw"
)

// Transcode converts a recording through the legacy ffmpeg pipeline,
// scanning frames sequentially from the start of the file instead of
// walking the index. When outputPath is empty a ".mp4" path is derived
// next to the input. Segment outputs are numbered by the transcoder.
func Transcode(inputPath string, outputPath string, config Config) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	reader := vraw.NewReader(in)

	header, err := reader.ReadHeader()
	if err != nil {
		return err
	}
	logrus.Debugf("recording started at %v",
		time.Unix(int64(header.EpochSec), int64(header.EpochNsec)))

	if outputPath == "" {
		name := fmt.Sprintf("%s_%s.mp4",
			strings.TrimSuffix(filepath.Base(inputPath), ".vraw"),
			timeNow().Format("2006-01-02T15_04_05"),
		)
		outputPath = filepath.Join(filepath.Dir(inputPath), name)
	}

	transcoder := ffmpeg.NewTranscoder(outputPath, ffmpeg.Options{
		Bin:       config.FFmpegBin,
		Framerate: config.Framerate,
		Preset:    config.Preset,
		CRF:       config.CRF,
		ExtraArgs: ffmpeg.ParseArgs(config.FFmpegArgs),
	})
	defer transcoder.Close()

	frames := 0
	for {
		frame, err := reader.ReadFrame()
		if err != nil {
			logrus.Debugf("end of usable recording after %d frames: %v", frames, err)
			break
		}
		if err := transcoder.WriteFrame(frame); err != nil {
			return err
		}
		frames++
	}

	if err := transcoder.Close(); err != nil {
		return err
	}
	logrus.Infof("transcoded %d frames", frames)
	return nil
}
