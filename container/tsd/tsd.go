/*
NAME
  tsd.go

DESCRIPTION
  tsd.go implements the time-series-data container used to store recorded
  pass-by audio: a single primary dataset of float64 samples with sample-rate
  and channel-count attributes in the header.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package tsd implements a minimal structured container for time series audio
// data. The layout is a fixed header followed by one dataset:
//
//	bytes 0-3   magic "TSD1"
//	bytes 4-7   sample rate (Hz, uint32 little-endian)
//	bytes 8-9   channel count (uint16 little-endian)
//	bytes 10-17 frame count (uint64 little-endian)
//	bytes 18-   interleaved samples, float64 little-endian
//
// Sample rate and channel count are stored as attributes of the dataset so a
// Signal can be reconstructed without reference to any other source, and the
// float64 encoding makes write/read round trips bit identical.
package tsd

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/passby/audio"
)

const magic = "TSD1"

const headerLen = 18

// chunkSamples is the number of samples decoded per read while parsing the
// dataset.
const chunkSamples = 4096

// Write stores s to w in tsd container format.
func Write(w io.Writer, s audio.Signal) error {
	if s.NumFrames() == 0 {
		return audio.ErrEmptyStream
	}

	header := make([]byte, headerLen)
	copy(header[0:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(s.Rate()))
	binary.LittleEndian.PutUint16(header[8:10], uint16(s.NumChannels()))
	binary.LittleEndian.PutUint64(header[10:18], uint64(s.NumFrames()))
	if _, err := w.Write(header); err != nil {
		return errors.Wrap(err, "could not write header")
	}

	samples := s.Interleaved()
	buf := make([]byte, 8*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	if _, err := w.Write(buf); err != nil {
		return errors.Wrap(err, "could not write samples")
	}
	return nil
}

// Read parses a tsd container from r and returns the stored Signal.
// It fails with audio.ErrUnreadableFormat if the header is malformed or the
// dataset is truncated, and audio.ErrEmptyStream if the dataset is empty.
func Read(r io.Reader) (audio.Signal, error) {
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return audio.Signal{}, fmt.Errorf("%w: could not read header: %v", audio.ErrUnreadableFormat, err)
	}
	if string(header[0:4]) != magic {
		return audio.Signal{}, fmt.Errorf("%w: bad magic %q", audio.ErrUnreadableFormat, header[0:4])
	}

	rate := int(binary.LittleEndian.Uint32(header[4:8]))
	channels := int(binary.LittleEndian.Uint16(header[8:10]))
	frames := binary.LittleEndian.Uint64(header[10:18])
	if rate <= 0 || channels < 1 {
		return audio.Signal{}, fmt.Errorf("%w: bad attributes: rate %d, channels %d", audio.ErrUnreadableFormat, rate, channels)
	}
	if frames == 0 {
		return audio.Signal{}, audio.ErrEmptyStream
	}

	// The frame count is untrusted; reject counts whose dataset size would
	// not fit an int before any sizing arithmetic.
	if frames > uint64(math.MaxInt/(8*channels)) {
		return audio.Signal{}, fmt.Errorf("%w: frame count %d too large for %d channels", audio.ErrUnreadableFormat, frames, channels)
	}

	// Decode the dataset in chunks so memory grows with the bytes actually
	// present, not with the declared frame count. A header declaring more
	// samples than the stream holds fails on the first short read.
	n := int(frames) * channels
	data := make([]float64, 0, min(n, chunkSamples))
	buf := make([]byte, 8*chunkSamples)
	for len(data) < n {
		c := n - len(data)
		if c > chunkSamples {
			c = chunkSamples
		}
		if _, err := io.ReadFull(r, buf[:8*c]); err != nil {
			return audio.Signal{}, fmt.Errorf("%w: truncated dataset: %v", audio.ErrUnreadableFormat, err)
		}
		for i := 0; i < c; i++ {
			data = append(data, math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:i*8+8])))
		}
	}

	s, err := audio.New(rate, channels, data)
	if err != nil {
		return audio.Signal{}, fmt.Errorf("%w: %v", audio.ErrUnreadableFormat, err)
	}
	return s, nil
}
