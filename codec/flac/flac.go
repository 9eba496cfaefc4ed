/*
NAME
  flac.go

DESCRIPTION
  flac.go provides functionality for decoding FLAC compressed audio into the
  Signal representation used by the pass-by detection pipeline.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package flac provides functionality for the decoding of FLAC compressed audio.
package flac

import (
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	"github.com/mewkiz/flac"

	"github.com/ausocean/passby/audio"
)

// Decode reads a FLAC stream from r and returns the decoded audio as a
// Signal. Channel count and sample rate are taken from the stream info.
// Decode fails with audio.ErrUnreadableFormat if the stream cannot be
// parsed and audio.ErrEmptyStream if it decodes to zero frames.
func Decode(r io.Reader) (audio.Signal, error) {
	stream, err := flac.Parse(r)
	if err != nil {
		return audio.Signal{}, fmt.Errorf("%w: could not parse FLAC: %v", audio.ErrUnreadableFormat, err)
	}

	nc := int(stream.Info.NChannels)
	bps := int(stream.Info.BitsPerSample)
	sr := int(stream.Info.SampleRate)

	// Decode frame by frame, interleaving subframe samples.
	var data []int
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		} else if err != nil {
			return audio.Signal{}, fmt.Errorf("%w: could not parse FLAC frame: %v", audio.ErrUnreadableFormat, err)
		}
		for i := 0; i < frame.Subframes[0].NSamples; i++ {
			for _, sub := range frame.Subframes {
				data = append(data, int(sub.Samples[i]))
			}
		}
	}
	if len(data) == 0 {
		return audio.Signal{}, audio.ErrEmptyStream
	}

	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: nc, SampleRate: sr},
		SourceBitDepth: bps,
		Data:           data,
	}
	s, err := audio.FromIntBuffer(buf, bps)
	if err != nil {
		return audio.Signal{}, fmt.Errorf("could not convert decoded samples: %w", err)
	}
	return s, nil
}
