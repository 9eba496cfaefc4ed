/*
NAME
  audio.go

DESCRIPTION
  audio.go provides the Signal type, a uniform in-memory representation of
  multi-channel audio used throughout the pass-by detection pipeline.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package audio provides the Signal type used to represent multi-channel
// audio in memory. Mono audio uses the same frame layout as multi-channel
// audio, so downstream processing only ever deals with one representation.
package audio

import (
	"errors"
	"fmt"

	gaudio "github.com/go-audio/audio"
)

// Errors returned when reading audio into a Signal.
var (
	ErrUnreadableFormat = errors.New("unreadable audio format")
	ErrEmptyStream      = errors.New("audio stream contains no frames")
)

// Signal is an immutable buffer of audio samples along with its sample rate.
// Samples are stored interleaved, i.e. frame by frame, with one float64 per
// channel per frame. Transformations on a Signal produce new Signals; the
// accessor methods copy, so callers cannot mutate a Signal through them.
type Signal struct {
	rate     int
	channels int
	data     []float64
}

// New creates a Signal from interleaved sample data. The length of data must
// be a whole number of frames, i.e. divisible by channels. New takes ownership
// of data; the caller must not modify it afterwards.
func New(rate, channels int, data []float64) (Signal, error) {
	if rate <= 0 {
		return Signal{}, fmt.Errorf("invalid sample rate: %d", rate)
	}
	if channels < 1 {
		return Signal{}, fmt.Errorf("invalid channel count: %d", channels)
	}
	if len(data)%channels != 0 {
		return Signal{}, fmt.Errorf("sample count %d is not a whole number of %d-channel frames", len(data), channels)
	}
	return Signal{rate: rate, channels: channels, data: data}, nil
}

// Rate returns the sample rate in Hz.
func (s Signal) Rate() int { return s.rate }

// NumChannels returns the number of channels in each frame.
func (s Signal) NumChannels() int { return s.channels }

// NumFrames returns the number of frames in the Signal.
func (s Signal) NumFrames() int {
	if s.channels == 0 {
		return 0
	}
	return len(s.data) / s.channels
}

// Frame returns a copy of the i'th frame, one sample per channel.
func (s Signal) Frame(i int) []float64 {
	f := make([]float64, s.channels)
	copy(f, s.data[i*s.channels:(i+1)*s.channels])
	return f
}

// Channel returns a copy of all samples belonging to channel c.
func (s Signal) Channel(c int) []float64 {
	n := s.NumFrames()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = s.data[i*s.channels+c]
	}
	return out
}

// Interleaved returns a copy of the raw interleaved sample data.
func (s Signal) Interleaved() []float64 {
	out := make([]float64, len(s.data))
	copy(out, s.data)
	return out
}

// Truncate returns a Signal containing the first n frames of s.
// The underlying samples are shared, which is safe since Signals
// are never written through.
func (s Signal) Truncate(n int) Signal {
	if n > s.NumFrames() {
		n = s.NumFrames()
	}
	return Signal{rate: s.rate, channels: s.channels, data: s.data[:n*s.channels]}
}

// Equal reports whether two Signals have identical rate, channel count and
// sample data.
func (s Signal) Equal(o Signal) bool {
	if s.rate != o.rate || s.channels != o.channels || len(s.data) != len(o.data) {
		return false
	}
	for i := range s.data {
		if s.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// FromIntBuffer converts a go-audio integer PCM buffer into a Signal,
// normalising samples of the given bit depth into [-1,1).
func FromIntBuffer(buf *gaudio.IntBuffer, bitDepth int) (Signal, error) {
	if buf == nil || buf.Format == nil {
		return Signal{}, ErrUnreadableFormat
	}
	if len(buf.Data) == 0 {
		return Signal{}, ErrEmptyStream
	}
	scale := float64(int(1) << uint(bitDepth-1))
	data := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = float64(v) / scale
	}
	return New(buf.Format.SampleRate, buf.Format.NumChannels, data)
}

// ToIntBuffer converts a Signal to a go-audio integer PCM buffer of the given
// bit depth, clipping samples outside [-1,1).
func (s Signal) ToIntBuffer(bitDepth int) *gaudio.IntBuffer {
	scale := float64(int(1) << uint(bitDepth-1))
	data := make([]int, len(s.data))
	for i, v := range s.data {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		n := int(v * scale)
		if n > int(scale)-1 {
			n = int(scale) - 1
		}
		data[i] = n
	}
	return &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: s.channels, SampleRate: s.rate},
		SourceBitDepth: bitDepth,
		Data:           data,
	}
}
