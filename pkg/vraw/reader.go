package vraw

import (
	"errors"
	"fmt"
	"io"
)

// Decode errors.
var (
	ErrInvalidPayloadSize = errors.New("invalid payload size")
	ErrInvalidDimensions  = errors.New("invalid frame dimensions")
)

// FrameInfo one decoded frame.
type FrameInfo struct {
	Resolution string // "<width>x<height>".
	Format     Format
	Timestamp  int64 // Receive timestamp, UnixNano.
	Data       []byte
}

// Reader reads frames from a single recording. The underlying file
// position is shared state; never interleave reads from two goroutines.
type Reader struct {
	in io.ReadSeeker
}

// NewReader creates a new reader.
func NewReader(in io.ReadSeeker) *Reader {
	return &Reader{in: in}
}

// ReadHeader reads and validates the leading recording header,
// leaving the source positioned at the first frame record.
func (r *Reader) ReadHeader() (*RecordingHeader, error) {
	buf := make([]byte, recordingHeaderSize)
	if _, err := io.ReadFull(r.in, buf); err != nil {
		return nil, fmt.Errorf("read recording header: %w", err)
	}

	var header RecordingHeader
	if err := header.Unmarshal(buf); err != nil {
		return nil, fmt.Errorf("unmarshal recording header (input is probably not a .vraw file): %w", err)
	}
	return &header, nil
}

// ReadFrameAt seeks to the entry's offset and decodes one frame.
func (r *Reader) ReadFrameAt(entry IndexEntry) (*FrameInfo, error) {
	if _, err := r.in.Seek(entry.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to frame at %d: %w", entry.Offset, err)
	}
	return r.ReadFrame()
}

// ReadFrame decodes one frame at the current position, leaving the source
// positioned immediately after the frame's generic-metadata trailer.
func (r *Reader) ReadFrame() (*FrameInfo, error) {
	headerBuf := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r.in, headerBuf); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	var header FrameHeader
	if err := header.Unmarshal(headerBuf); err != nil {
		return nil, fmt.Errorf("unmarshal frame header: %w", err)
	}

	if header.PayloadSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPayloadSize, header.PayloadSize)
	}

	format, err := ParseFormat(header.Format)
	if err != nil {
		return nil, err
	}

	if err := validateDimensions(&header, format); err != nil {
		return nil, err
	}

	payload := make([]byte, header.PayloadSize)
	if _, err := io.ReadFull(r.in, payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}

	data := payload
	if format != FormatStats {
		data = stripPlacementFooter(payload)
	}

	if err := r.skipGenericMetadata(); err != nil {
		return nil, err
	}

	return &FrameInfo{
		Resolution: fmt.Sprintf("%dx%d", header.Width, header.Height),
		Format:     format,
		Timestamp:  header.ReceiveTimestamp,
		Data:       data,
	}, nil
}

// Coded frames carry no dimensions, everything else except stats must
// have a positive resolution.
func validateDimensions(header *FrameHeader, format Format) error {
	if format.IsCoded() {
		if header.Width != 0 || header.Height != 0 {
			return fmt.Errorf("%w: coded frame with %dx%d",
				ErrInvalidDimensions, header.Width, header.Height)
		}
		return nil
	}
	if format != FormatStats && (header.Width <= 0 || header.Height <= 0) {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, header.Width, header.Height)
	}
	return nil
}

// Number of tail positions probed for a placement footer. The window is
// kept small to avoid false positives deep inside payload data.
const placementScanAttempts = 11

// stripPlacementFooter probes the payload tail for a placement footer and
// strips the declared metadata. The footer is not announced anywhere, so
// its magic is pattern-matched at up to placementScanAttempts positions,
// nearest the tail first. Without a match the payload is returned
// unchanged.
func stripPlacementFooter(payload []byte) []byte {
	for attempt := 0; attempt < placementScanAttempts; attempt++ {
		end := len(payload) - attempt
		if end < placementFooterSize {
			break
		}

		var footer placementFooter
		if err := footer.Unmarshal(payload[end-placementFooterSize : end]); err != nil {
			continue
		}

		strip := int(footer.MetadataSize) + placementFooterSize
		if strip > len(payload) {
			// Declared size reaches past the payload start. Treat as a
			// false positive rather than stripping everything.
			continue
		}
		return payload[:len(payload)-strip]
	}
	return payload
}

// skipGenericMetadata reads past the generic metadata block that follows
// every frame payload. The body is opaque and discarded. The 8-byte
// trailer is skipped without validation, its structure is assumed.
func (r *Reader) skipGenericMetadata() error {
	buf := make([]byte, genericHeaderSize)
	if _, err := io.ReadFull(r.in, buf); err != nil {
		return fmt.Errorf("read generic metadata header: %w", err)
	}

	var header genericMetadataHeader
	if err := header.Unmarshal(buf); err != nil {
		return fmt.Errorf("unmarshal generic metadata header: %w", err)
	}

	if _, err := io.CopyN(io.Discard, r.in, int64(header.Size)); err != nil {
		return fmt.Errorf("skip generic metadata body: %w", err)
	}

	if _, err := io.CopyN(io.Discard, r.in, genericTrailerSize); err != nil {
		return fmt.Errorf("skip generic metadata trailer: %w", err)
	}
	return nil
}
