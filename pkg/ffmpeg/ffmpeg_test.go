package ffmpeg

import (
	"io"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voysys/vraw-convert/pkg/vraw"
)

func TestFakeProcess(t *testing.T) {
	if os.Getenv("GO_TEST_PROCESS") != "1" {
		return
	}

	io.Copy(io.Discard, os.Stdin) //nolint:errcheck
	os.Exit(0)
}

func fakeExecCommand(...string) *exec.Cmd {
	cs := []string{"-test.run=TestFakeProcess"}
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_TEST_PROCESS=1"}
	return cmd
}

func testOptions() Options {
	return Options{
		Bin:       "ffmpeg",
		Framerate: 30,
		Preset:    "veryfast",
		CRF:       23,
	}
}

func TestBuildArgs(t *testing.T) {
	cases := map[string]struct {
		resolution string
		format     vraw.Format
		expected   []string
	}{
		"rawvideo": {
			"1920x1080", vraw.FormatYUV,
			[]string{
				"-hide_banner", "-y",
				"-f", "rawvideo",
				"-pix_fmt", "yuv420p",
				"-s", "1920x1080",
				"-framerate", "30",
				"-i", "-",
				"-c:v", "libx264",
				"-preset", "veryfast",
				"-crf", "23",
				"out.mp4",
			},
		},
		"hevc": {
			"0x0", vraw.FormatH265,
			[]string{
				"-hide_banner", "-y",
				"-f", "hevc",
				"-framerate", "30",
				"-i", "-",
				"-c:v", "copy",
				"out.mp4",
			},
		},
		"mjpeg": {
			"0x0", vraw.FormatMJPEG,
			[]string{
				"-hide_banner", "-y",
				"-f", "mjpeg",
				"-framerate", "30",
				"-i", "-",
				"-c:v", "copy",
				"out.mp4",
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			actual, err := BuildArgs(tc.resolution, tc.format, testOptions(), "out.mp4")
			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}

	t.Run("stats", func(t *testing.T) {
		_, err := BuildArgs("0x0", vraw.FormatStats, testOptions(), "out.mp4")
		require.ErrorIs(t, err, vraw.ErrNotVideo)
	})
	t.Run("extraArgs", func(t *testing.T) {
		opts := testOptions()
		opts.ExtraArgs = ParseArgs("-movflags +faststart")

		actual, err := BuildArgs("0x0", vraw.FormatH265, opts, "out.mp4")
		require.NoError(t, err)
		require.Equal(t, []string{
			"-hide_banner", "-y",
			"-f", "hevc",
			"-framerate", "30",
			"-i", "-",
			"-c:v", "copy",
			"-movflags", "+faststart",
			"out.mp4",
		}, actual)
	})
}

func TestSegmentPath(t *testing.T) {
	tr := &Transcoder{output: "/tmp/recording_ts.mp4"}
	require.Equal(t, "/tmp/recording_ts_000.mp4", tr.segmentPath())

	tr.segment = 12
	require.Equal(t, "/tmp/recording_ts_012.mp4", tr.segmentPath())
}

func TestTranscoder(t *testing.T) {
	hevcFrame := func(data ...byte) *vraw.FrameInfo {
		return &vraw.FrameInfo{
			Resolution: "0x0",
			Format:     vraw.FormatH265,
			Data:       data,
		}
	}

	t.Run("ok", func(t *testing.T) {
		tr := NewTranscoder("out.mp4", testOptions())
		tr.command = fakeExecCommand

		require.NoError(t, tr.WriteFrame(hevcFrame(1)))
		require.NoError(t, tr.WriteFrame(hevcFrame(2)))
		require.Equal(t, 1, tr.segment)

		require.NoError(t, tr.Close())
		require.NoError(t, tr.Close())
	})
	t.Run("statsIgnored", func(t *testing.T) {
		tr := NewTranscoder("out.mp4", testOptions())
		tr.command = fakeExecCommand

		err := tr.WriteFrame(&vraw.FrameInfo{Format: vraw.FormatStats})
		require.NoError(t, err)
		require.Nil(t, tr.cmd)
	})
	t.Run("restartOnFormatChange", func(t *testing.T) {
		tr := NewTranscoder("out.mp4", testOptions())
		tr.command = fakeExecCommand

		require.NoError(t, tr.WriteFrame(hevcFrame(1)))

		yuv := &vraw.FrameInfo{
			Resolution: "2x2",
			Format:     vraw.FormatYUV,
			Data:       []byte{2},
		}

		// The switching frame is the first of the discarded ones.
		require.NoError(t, tr.WriteFrame(yuv))
		require.Equal(t, 2, tr.segment)
		require.Equal(t, transitionDiscard-1, tr.discard)

		require.NoError(t, tr.WriteFrame(yuv))
		require.Equal(t, transitionDiscard-2, tr.discard)

		require.NoError(t, tr.Close())
	})
	t.Run("restartOnResolutionChange", func(t *testing.T) {
		tr := NewTranscoder("out.mp4", testOptions())
		tr.command = fakeExecCommand

		yuv := func(resolution string) *vraw.FrameInfo {
			return &vraw.FrameInfo{
				Resolution: resolution,
				Format:     vraw.FormatYUV,
				Data:       []byte{1},
			}
		}
		require.NoError(t, tr.WriteFrame(yuv("2x2")))
		require.NoError(t, tr.WriteFrame(yuv("4x4")))
		require.Equal(t, 2, tr.segment)

		require.NoError(t, tr.Close())
	})
}

func TestParseArgs(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected []string
	}{
		"simple":  {"1 2 3 4", []string{"1", "2", "3", "4"}},
		"trimmed": {" -y out.mp4 ", []string{"-y", "out.mp4"}},
		"empty":   {"", nil},
		"blank":   {"   ", nil},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			actual := ParseArgs(tc.input)
			require.Equal(t, tc.expected, actual)
		})
	}
}
