/*
NAME
  wav.go

DESCRIPTION
  wav.go contains functions for decoding and encoding WAV audio to and from
  the Signal representation used by the pass-by detection pipeline.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package wav provides functions for converting between WAV audio and Signals.
package wav

import (
	"fmt"
	"io"

	gwav "github.com/go-audio/wav"

	"github.com/ausocean/passby/audio"
)

const pcmFormat = 1 // PCM audio format value as defined by the WAV standard.

// DefaultBitDepth is the bit depth used by Encode unless told otherwise.
const DefaultBitDepth = 16

// Decode reads a WAV container from r and returns its contents as a Signal.
// Mono WAV yields a single-channel Signal with the same frame layout as
// multi-channel audio. Decode fails with audio.ErrUnreadableFormat if the
// container cannot be parsed, and audio.ErrEmptyStream if it holds no frames.
func Decode(r io.ReadSeeker) (audio.Signal, error) {
	d := gwav.NewDecoder(r)
	if !d.IsValidFile() {
		return audio.Signal{}, fmt.Errorf("%w: not a valid WAV file", audio.ErrUnreadableFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return audio.Signal{}, fmt.Errorf("%w: could not read PCM data: %v", audio.ErrUnreadableFormat, err)
	}
	if len(buf.Data) == 0 {
		return audio.Signal{}, audio.ErrEmptyStream
	}

	s, err := audio.FromIntBuffer(buf, int(d.BitDepth))
	if err != nil {
		return audio.Signal{}, fmt.Errorf("could not convert PCM buffer: %w", err)
	}
	return s, nil
}

// Encode writes s to ws as a PCM WAV container with the given bit depth.
func Encode(ws io.WriteSeeker, s audio.Signal, bitDepth int) error {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unhandled bit depth: %d", bitDepth)
	}

	enc := gwav.NewEncoder(ws, s.Rate(), bitDepth, s.NumChannels(), pcmFormat)
	if err := enc.Write(s.ToIntBuffer(bitDepth)); err != nil {
		return fmt.Errorf("could not write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not finalise WAV: %w", err)
	}
	return nil
}
