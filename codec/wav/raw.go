/*
NAME
  raw.go

DESCRIPTION
  raw.go contains a writer for wrapping raw little-endian PCM bytes in a WAV
  container without an intermediate sample conversion, used by the recorder.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package wav

import (
	"encoding/binary"
	"fmt"
	"io"
)

const headerLen = 44

// Raw WAV metadata errors.
var (
	errInvalidRate     = fmt.Errorf("invalid or no sample rate defined")
	errInvalidChannels = fmt.Errorf("invalid or no number of channels defined")
	errInvalidBitDepth = fmt.Errorf("invalid or no bit depth defined")
)

// Metadata describes the format of raw PCM audio to be wrapped in a WAV
// container.
type Metadata struct {
	Channels   int
	SampleRate int
	BitDepth   int
}

// WriteRaw writes a WAV container to w consisting of a 44 byte header built
// from md followed by the raw little-endian PCM in p. It returns the total
// number of bytes written.
func WriteRaw(w io.Writer, md Metadata, p []byte) (int, error) {
	if md.SampleRate <= 0 {
		return 0, errInvalidRate
	}
	if md.Channels <= 0 {
		return 0, errInvalidChannels
	}
	if md.BitDepth <= 0 || md.BitDepth%8 != 0 {
		return 0, errInvalidBitDepth
	}

	frameSize := md.Channels * md.BitDepth / 8
	header := make([]byte, headerLen)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(p)+headerLen-8))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // fmt chunk size.
	binary.LittleEndian.PutUint16(header[20:22], pcmFormat)
	binary.LittleEndian.PutUint16(header[22:24], uint16(md.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(md.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(md.SampleRate*frameSize)) // Byte rate.
	binary.LittleEndian.PutUint16(header[32:34], uint16(frameSize))
	binary.LittleEndian.PutUint16(header[34:36], uint16(md.BitDepth))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(p)))

	n, err := w.Write(header)
	if err != nil {
		return n, fmt.Errorf("could not write WAV header: %w", err)
	}
	nd, err := w.Write(p)
	if err != nil {
		return n + nd, fmt.Errorf("could not write PCM data: %w", err)
	}
	return n + nd, nil
}
