// Package ffmpeg pipes decoded frames to an ffmpeg subprocess. This is
// the legacy output mode: instead of muxing coded payloads directly, every
// frame is fed to ffmpeg on stdin and re-encoded or copied into a
// container.
package ffmpeg

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/voysys/vraw-convert/pkg/vraw"
)

// Options transcode pipeline settings.
type Options struct {
	Bin       string // ffmpeg binary.
	Framerate int
	Preset    string   // x264 preset.
	CRF       int      // x264 crf value.
	ExtraArgs []string // Extra output arguments, passed through verbatim.
}

// Frames discarded on a pipeline switch to avoid transition artifacts.
// The frame that triggers the switch is the first of them.
const transitionDiscard = 3

// Transcoder feeds a stream of decoded frames to ffmpeg. The pipeline is
// reinitialized whenever the incoming resolution or format changes, each
// segment producing a numbered output file.
type Transcoder struct {
	opts    Options
	output  string
	command func(...string) *exec.Cmd

	cmd   *exec.Cmd
	stdin io.WriteCloser

	resolution string
	format     vraw.Format
	segment    int
	discard    int
}

// NewTranscoder returns a transcoder writing segments derived from the
// output path: "out.mp4" becomes "out_000.mp4", "out_001.mp4", ...
func NewTranscoder(output string, opts Options) *Transcoder {
	command := func(args ...string) *exec.Cmd {
		return exec.Command(opts.Bin, args...)
	}
	return &Transcoder{
		opts:    opts,
		output:  output,
		command: command,
	}
}

// WriteFrame feeds one frame to the pipeline. Stats records are ignored.
func (t *Transcoder) WriteFrame(frame *vraw.FrameInfo) error {
	if frame.Format == vraw.FormatStats {
		return nil
	}

	if t.cmd == nil || frame.Resolution != t.resolution || frame.Format != t.format {
		if err := t.restart(frame); err != nil {
			return err
		}
	}

	if t.discard > 0 {
		t.discard--
		return nil
	}

	if _, err := t.stdin.Write(frame.Data); err != nil {
		return fmt.Errorf("write to ffmpeg: %w", err)
	}
	return nil
}

func (t *Transcoder) restart(frame *vraw.FrameInfo) error {
	if err := t.Close(); err != nil {
		return err
	}

	args, err := BuildArgs(frame.Resolution, frame.Format, t.opts, t.segmentPath())
	if err != nil {
		return err
	}
	logrus.Infof("starting pipeline segment %d: %v %v",
		t.segment, frame.Resolution, frame.Format)

	cmd := t.command(args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open ffmpeg stdin: %w", err)
	}
	if err := t.attachLogger(cmd); err != nil {
		return fmt.Errorf("attach ffmpeg logger: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	t.cmd = cmd
	t.stdin = stdin
	t.resolution = frame.Resolution
	t.format = frame.Format
	t.segment++
	if t.segment > 1 {
		t.discard = transitionDiscard
	}
	return nil
}

func (t *Transcoder) attachLogger(cmd *exec.Cmd) error {
	pipe, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	scanner := bufio.NewScanner(pipe)
	go func() {
		for scanner.Scan() {
			logrus.Debugf("ffmpeg: %v", scanner.Text())
		}
	}()
	return nil
}

func (t *Transcoder) segmentPath() string {
	extension := filepath.Ext(t.output)
	base := strings.TrimSuffix(t.output, extension)
	return fmt.Sprintf("%s_%03d%s", base, t.segment, extension)
}

// Close closes the current pipeline segment and waits for ffmpeg to
// drain. Safe to call multiple times.
func (t *Transcoder) Close() error {
	if t.cmd == nil {
		return nil
	}
	cmd := t.cmd
	t.cmd = nil

	if err := t.stdin.Close(); err != nil {
		return fmt.Errorf("close ffmpeg stdin: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// BuildArgs builds the ffmpeg argument list for one pipeline segment.
func BuildArgs(
	resolution string,
	format vraw.Format,
	opts Options,
	outputPath string,
) ([]string, error) {
	demuxer, err := format.Demuxer()
	if err != nil {
		return nil, err
	}

	args := []string{"-hide_banner", "-y", "-f", demuxer}
	if demuxer == "rawvideo" {
		pixFmt, err := format.PixelFormat()
		if err != nil {
			return nil, err
		}
		args = append(args, "-pix_fmt", pixFmt, "-s", resolution)
	}
	args = append(args, "-framerate", strconv.Itoa(opts.Framerate), "-i", "-")

	codec, err := format.Codec()
	if err != nil {
		return nil, err
	}
	args = append(args, "-c:v", codec)
	if codec == "libx264" {
		args = append(args, "-preset", opts.Preset, "-crf", strconv.Itoa(opts.CRF))
	}
	args = append(args, opts.ExtraArgs...)

	return append(args, outputPath), nil
}

// ParseArgs slices arguments.
func ParseArgs(args string) []string {
	trimmed := strings.TrimSpace(args)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, " ")
}
