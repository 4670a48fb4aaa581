// Package mux writes a single video track to an ISO base media file.
package mux

import (
	"errors"
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/hevc"
	"github.com/Eyevinn/mp4ff/mp4"
)

// Config container-level configuration.
type Config struct {
	MajorBrand       string
	MinorVersion     uint32
	CompatibleBrands []string
	Timescale        uint32 // Media time units per second.
}

// Sample one video sample. Data is written verbatim. Decode times are
// derived by the writer from the accumulated durations.
type Sample struct {
	Duration        uint32 // In Config.Timescale units.
	RenderingOffset int32
	IsSync          bool
	Data            []byte
}

// Writer errors.
var (
	ErrNoTrack     = errors.New("no track added")
	ErrTrackExists = errors.New("track already added")
	ErrFinalized   = errors.New("writer already finalized")
)

const videoTrackID = 1

// Writer muxes samples for one video track into an ISO-BMFF file.
// Samples are buffered and written as ftyp+moov followed by a single
// moof+mdat fragment when Finalize is called.
type Writer struct {
	out io.Writer
	cfg Config

	init       *mp4.InitSegment
	samples    []mp4.FullSample
	decodeTime uint64
	finalized  bool
}

// NewWriter creates a writer. Nothing is written until Finalize.
func NewWriter(out io.Writer, cfg Config) *Writer {
	return &Writer{out: out, cfg: cfg}
}

// AddHEVCTrack adds the single video track, configured for HEVC with a
// minimal decoder configuration. Track dimensions stay zero, coded vraw
// frames declare none.
func (w *Writer) AddHEVCTrack() error {
	if w.init != nil {
		return ErrTrackExists
	}

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(w.cfg.Timescale, "video", "und")

	hvcC := &mp4.HvcCBox{
		DecConfRec: hevc.DecConfRec{
			ConfigurationVersion: 1,
			LengthSizeMinusOne:   3, // 4-byte NAL length fields.
		},
	}
	hvc1 := mp4.CreateVisualSampleEntryBox("hvc1", 0, 0, hvcC)
	init.Moov.Trak.Mdia.Minf.Stbl.Stsd.AddChild(hvc1)

	w.init = init
	return nil
}

// WriteSample appends one sample to the track.
func (w *Writer) WriteSample(s Sample) error {
	if w.finalized {
		return ErrFinalized
	}
	if w.init == nil {
		return ErrNoTrack
	}

	flags := mp4.NonSyncSampleFlags
	if s.IsSync {
		flags = mp4.SyncSampleFlags
	}

	w.samples = append(w.samples, mp4.FullSample{
		Sample: mp4.Sample{
			Flags:                 flags,
			Dur:                   s.Duration,
			Size:                  uint32(len(s.Data)),
			CompositionTimeOffset: s.RenderingOffset,
		},
		DecodeTime: w.decodeTime,
		Data:       s.Data,
	})
	w.decodeTime += uint64(s.Duration)
	return nil
}

// SampleCount returns the number of samples written so far.
func (w *Writer) SampleCount() int {
	return len(w.samples)
}

// Finalize writes the complete file and must be called exactly once.
func (w *Writer) Finalize() error {
	if w.finalized {
		return ErrFinalized
	}
	if w.init == nil {
		return ErrNoTrack
	}
	w.finalized = true

	ftyp := mp4.NewFtyp(w.cfg.MajorBrand, w.cfg.MinorVersion, w.cfg.CompatibleBrands)
	if err := ftyp.Encode(w.out); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}

	if err := w.init.Moov.Encode(w.out); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}

	frag, err := mp4.CreateFragment(1, videoTrackID)
	if err != nil {
		return fmt.Errorf("create fragment: %w", err)
	}
	for _, sample := range w.samples {
		frag.AddFullSample(sample)
	}
	if err := frag.Encode(w.out); err != nil {
		return fmt.Errorf("encode fragment: %w", err)
	}
	return nil
}
