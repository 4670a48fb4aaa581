// Package convert converts vraw recordings to standard formats.
package convert

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/voysys/vraw-convert/pkg/mux"
	"github.com/voysys/vraw-convert/pkg/vraw"
)

// Conversion errors.
var (
	ErrEmptyIndex        = errors.New("index contains no frames")
	ErrNoVideoFrame      = errors.New("no video frame found")
	ErrUnsupportedFormat = errors.New("format not supported")
)

// Options conversion options.
type Options struct {
	// StrictMJPEG skips frames whose format is not MJPEG instead of
	// appending them to the elementary stream.
	StrictMJPEG bool
}

// Convert converts a .vraw recording to an MP4 file (HEVC recordings) or
// a raw concatenated elementary stream (MJPEG recordings). When
// outputPath is empty a path is derived from the input path, the dominant
// format and the current local time. Returns the output path written.
func Convert(inputPath string, outputPath string, opts Options) (string, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	entries, err := vraw.ReadIndex(in)
	if err != nil {
		return "", fmt.Errorf("read index: %w", err)
	}
	if len(entries) == 0 {
		return "", ErrEmptyIndex
	}
	logrus.Debugf("index contains %d entries", len(entries))

	reader := vraw.NewReader(in)

	format, err := dominantFormat(reader, entries)
	if err != nil {
		return "", err
	}
	logrus.Infof("dominant format: %v", format)

	if outputPath == "" {
		outputPath, err = DeriveOutputPath(inputPath, format, timeNow())
		if err != nil {
			return "", err
		}
	}

	warnLowDiskSpace(outputPath, in)

	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	buf := bufio.NewWriter(out)
	switch format {
	case vraw.FormatH265:
		err = extractHEVC(reader, entries, buf)
	case vraw.FormatMJPEG:
		err = extractMJPEG(reader, entries, buf, opts)
	default:
		err = fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", err
	}

	if err := buf.Flush(); err != nil {
		return "", fmt.Errorf("flush output: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close output: %w", err)
	}

	logrus.Infof("wrote %v", outputPath)
	return outputPath, nil
}

// dominantFormat returns the format of the first index entry, in file
// order, whose decoded frame is not a stats record. Entries that fail to
// decode are skipped.
func dominantFormat(reader *vraw.Reader, entries []vraw.IndexEntry) (vraw.Format, error) {
	for _, entry := range entries {
		frame, err := reader.ReadFrameAt(entry)
		if err != nil {
			logrus.Debugf("skipping undecodable frame at %d: %v", entry.Offset, err)
			continue
		}
		if frame.Format != vraw.FormatStats {
			return frame.Format, nil
		}
	}
	return 0, ErrNoVideoFrame
}

// extractHEVC walks the index and muxes every HEVC frame into an
// ISO-media container with a single video track. The first video frame
// seeds the track and the timestamp baseline and contributes no sample.
// A frame that fails to decode marks the end of the usable recording.
func extractHEVC(reader *vraw.Reader, entries []vraw.IndexEntry, out io.Writer) error {
	writer := mux.NewWriter(out, mux.Config{
		MajorBrand:       "isom",
		MinorVersion:     512,
		CompatibleBrands: []string{"hev1"},
		Timescale:        1000, // Milliseconds.
	})

	var lastTimestamp int64
	haveTrack := false

	for _, entry := range entries {
		frame, err := reader.ReadFrameAt(entry)
		if err != nil {
			logrus.Debugf("end of usable recording at %d: %v", entry.Offset, err)
			break
		}
		if frame.Format == vraw.FormatStats {
			continue
		}

		if !haveTrack {
			if err := writer.AddHEVCTrack(); err != nil {
				return fmt.Errorf("add track: %w", err)
			}
			lastTimestamp = frame.Timestamp
			haveTrack = true
			continue
		}

		// Timestamps are nanoseconds, the container timescale is
		// milliseconds.
		duration := math.Round(float64(frame.Timestamp-lastTimestamp) * 1e-6)
		err = writer.WriteSample(mux.Sample{
			Duration:        uint32(duration),
			RenderingOffset: 0,
			IsSync:          false,
			Data:            frame.Data,
		})
		if err != nil {
			return fmt.Errorf("write sample: %w", err)
		}
		lastTimestamp = frame.Timestamp
	}

	if !haveTrack {
		return ErrNoVideoFrame
	}

	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("finalize container: %w", err)
	}
	logrus.Debugf("muxed %d samples", writer.SampleCount())
	return nil
}

// extractMJPEG walks the index and concatenates frame payloads into a raw
// motion-JPEG elementary stream. Foreign formats are appended with a
// diagnostic unless StrictMJPEG is set.
func extractMJPEG(reader *vraw.Reader, entries []vraw.IndexEntry, out io.Writer, opts Options) error {
	for _, entry := range entries {
		frame, err := reader.ReadFrameAt(entry)
		if err != nil {
			logrus.Debugf("end of usable recording at %d: %v", entry.Offset, err)
			break
		}
		if frame.Format != vraw.FormatMJPEG {
			if opts.StrictMJPEG {
				logrus.Warnf("skipping frame in %v format", frame.Format)
				continue
			}
			logrus.Warnf("appending frame in %v format", frame.Format)
		}
		if _, err := out.Write(frame.Data); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
	return nil
}
