package vraw

import (
	"errors"
	"fmt"
)

// Format video capture format code from the frame header.
type Format int32

// Positive codes are uncompressed pixel layouts, negative codes are
// compressed elementary streams or the non-video stats record.
const (
	FormatRGB    Format = 0
	FormatBGR    Format = 1
	FormatYUV    Format = 2
	FormatNV12   Format = 3
	FormatYUYV   Format = 4
	FormatUYVY   Format = 5
	FormatRaw    Format = 6
	FormatMono16 Format = 7
	FormatRaw16  Format = 8
	FormatMono8  Format = 9
	FormatH264   Format = -4601
	FormatH265   Format = -4602
	FormatMJPEG  Format = -4603
	FormatStats  Format = -4701
)

// Format errors.
var (
	ErrUnknownFormat = errors.New("unknown video capture format")
	ErrNotRawFormat  = errors.New("not a raw pixel format")
	ErrNotVideo      = errors.New("not a video format")
)

// ParseFormat maps a frame header format code to a Format.
func ParseFormat(code int32) (Format, error) {
	switch f := Format(code); f {
	case FormatRGB, FormatBGR, FormatYUV, FormatNV12, FormatYUYV,
		FormatUYVY, FormatRaw, FormatMono16, FormatRaw16, FormatMono8,
		FormatH264, FormatH265, FormatMJPEG, FormatStats:
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownFormat, code)
	}
}

// IsCoded reports whether the format is a compressed elementary stream.
func (f Format) IsCoded() bool {
	switch f {
	case FormatH264, FormatH265, FormatMJPEG:
		return true
	default:
		return false
	}
}

func (f Format) String() string {
	switch f {
	case FormatRGB:
		return "rgb"
	case FormatBGR:
		return "bgr"
	case FormatYUV:
		return "yuv"
	case FormatNV12:
		return "nv12"
	case FormatYUYV:
		return "yuyv"
	case FormatUYVY:
		return "uyvy"
	case FormatRaw:
		return "raw"
	case FormatMono16:
		return "mono16"
	case FormatRaw16:
		return "raw16"
	case FormatMono8:
		return "mono8"
	case FormatH264:
		return "h264"
	case FormatH265:
		return "h265"
	case FormatMJPEG:
		return "mjpeg"
	case FormatStats:
		return "stats"
	default:
		return fmt.Sprintf("unknown(%d)", int32(f))
	}
}

// PixelFormat returns the ffmpeg pix_fmt for a raw pixel layout.
func (f Format) PixelFormat() (string, error) {
	switch f {
	case FormatRGB:
		return "rgb24", nil
	case FormatBGR:
		return "bgr24", nil
	case FormatYUV:
		return "yuv420p", nil
	case FormatNV12:
		return "nv12", nil
	case FormatYUYV:
		return "yuyv422", nil
	case FormatUYVY:
		return "uyvy422", nil
	case FormatRaw: // 8-bit sensor data.
		return "bayer_rggb8", nil
	case FormatMono16: // Assuming little-endian.
		return "gray16le", nil
	case FormatRaw16: // 16-bit sensor data.
		return "bayer_rggb16le", nil
	case FormatMono8:
		return "gray", nil
	default:
		return "", fmt.Errorf("%w: %v", ErrNotRawFormat, f)
	}
}

// Demuxer returns the ffmpeg input demuxer for the format.
func (f Format) Demuxer() (string, error) {
	switch {
	case f == FormatH264:
		return "h264", nil
	case f == FormatH265:
		return "hevc", nil
	case f == FormatMJPEG:
		return "mjpeg", nil
	case f != FormatStats:
		return "rawvideo", nil
	default:
		return "", fmt.Errorf("%w: %v", ErrNotVideo, f)
	}
}

// Codec returns the ffmpeg output codec for the format.
func (f Format) Codec() (string, error) {
	switch {
	case f.IsCoded():
		return "copy", nil
	case f != FormatStats:
		return "libx264", nil
	default:
		return "", fmt.Errorf("%w: %v", ErrNotVideo, f)
	}
}
