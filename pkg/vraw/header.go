package vraw

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic constants.
const (
	recordingMagic       = uint32(0xFEEDFEED)
	frameMagic           = uint32(0xAAAAFEED)
	genericMetadataMagic = uint32(0xBACCDEEF)
	indexMagic           = uint32(0xDCBAFEED)
)

// Layout sizes.
const (
	recordingHeaderSize = 16
	FrameHeaderSize     = 48
	genericHeaderSize   = 8
	genericTrailerSize  = 8
	placementFooterSize = 7
	IndexEntrySize      = 16
	indexFooterSize     = 8
)

// Parsing errors.
var (
	ErrLayoutMismatch = errors.New("unexpected layout size")
	ErrMagicMismatch  = errors.New("magic does not match")
)

var placementMagic = [5]byte{0x00, 0x00, 0x00, 0x56, 0x4A}

func checkLayout(buf []byte, expected int) error {
	if len(buf) != expected {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrLayoutMismatch, expected, len(buf))
	}
	return nil
}

func checkMagic(found uint32, expected uint32) error {
	if found != expected {
		return fmt.Errorf("%w: expected %#x, found %#x", ErrMagicMismatch, expected, found)
	}
	return nil
}

// RecordingHeader leading file header.
type RecordingHeader struct {
	EpochNsec uint32 // Nanoseconds relative to EpochSec.
	EpochSec  uint64 // Unix time of the recording start.
}

// Unmarshal recording header.
func (h *RecordingHeader) Unmarshal(buf []byte) error {
	if err := checkLayout(buf, recordingHeaderSize); err != nil {
		return err
	}
	if err := checkMagic(binary.LittleEndian.Uint32(buf[0:4]), recordingMagic); err != nil {
		return err
	}
	h.EpochNsec = binary.LittleEndian.Uint32(buf[4:8])
	h.EpochSec = binary.LittleEndian.Uint64(buf[8:16])
	return nil
}

// FrameHeader fixed per-frame header.
type FrameHeader struct {
	ID               int32
	Width            int32
	Height           int32
	Format           int32
	CaptureTimestamp int64 // UnixNano.
	ReceiveTimestamp int64 // UnixNano.
	PayloadSize      int64
}

// Unmarshal frame header.
func (h *FrameHeader) Unmarshal(buf []byte) error {
	if err := checkLayout(buf, FrameHeaderSize); err != nil {
		return err
	}
	if err := checkMagic(binary.LittleEndian.Uint32(buf[0:4]), frameMagic); err != nil {
		return err
	}
	h.ID = int32(binary.LittleEndian.Uint32(buf[4:8]))
	// buf[8:12] is padding.
	h.Width = int32(binary.LittleEndian.Uint32(buf[12:16]))
	h.Height = int32(binary.LittleEndian.Uint32(buf[16:20]))
	h.Format = int32(binary.LittleEndian.Uint32(buf[20:24]))
	h.CaptureTimestamp = int64(binary.LittleEndian.Uint64(buf[24:32]))
	h.ReceiveTimestamp = int64(binary.LittleEndian.Uint64(buf[32:40]))
	h.PayloadSize = int64(binary.LittleEndian.Uint64(buf[40:48]))
	return nil
}

// genericMetadataHeader precedes the opaque metadata body after every
// frame payload.
type genericMetadataHeader struct {
	Size uint32
}

func (h *genericMetadataHeader) Unmarshal(buf []byte) error {
	if err := checkLayout(buf, genericHeaderSize); err != nil {
		return err
	}
	if err := checkMagic(binary.LittleEndian.Uint32(buf[0:4]), genericMetadataMagic); err != nil {
		return err
	}
	h.Size = binary.LittleEndian.Uint32(buf[4:8])
	return nil
}

// placementFooter optional trailing placement metadata declaration.
type placementFooter struct {
	MetadataSize uint16
}

func (f *placementFooter) Unmarshal(buf []byte) error {
	if err := checkLayout(buf, placementFooterSize); err != nil {
		return err
	}
	if !bytes.Equal(buf[2:7], placementMagic[:]) {
		return fmt.Errorf("%w: placement footer tail %x", ErrMagicMismatch, buf[2:7])
	}
	f.MetadataSize = binary.LittleEndian.Uint16(buf[0:2])
	return nil
}

// IndexEntry one random-access index entry.
type IndexEntry struct {
	Offset           int64 // Absolute offset of the frame record.
	ReceiveTimestamp int64 // UnixNano.
}

// Unmarshal index entry.
func (e *IndexEntry) Unmarshal(buf []byte) error {
	if err := checkLayout(buf, IndexEntrySize); err != nil {
		return err
	}
	e.Offset = int64(binary.LittleEndian.Uint64(buf[0:8]))
	e.ReceiveTimestamp = int64(binary.LittleEndian.Uint64(buf[8:16]))
	return nil
}

// indexFooter last 8 bytes of the file.
type indexFooter struct {
	Count uint32
}

func (f *indexFooter) Unmarshal(buf []byte) error {
	if err := checkLayout(buf, indexFooterSize); err != nil {
		return err
	}
	if err := checkMagic(binary.LittleEndian.Uint32(buf[0:4]), indexMagic); err != nil {
		return err
	}
	f.Count = binary.LittleEndian.Uint32(buf[4:8])
	return nil
}
