/*
NAME
  flac_test.go

DESCRIPTION
  flac_test.go provides testing for FLAC audio decoding.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package flac

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/ausocean/passby/audio"
)

const testFile = "testdata/tone.flac"

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{name: "empty", in: nil},
		{name: "garbage", in: []byte("definitely not a FLAC stream")},
		{name: "bad magic", in: []byte{'f', 'L', 'a', 'K', 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.in))
			if !errors.Is(err, audio.ErrUnreadableFormat) {
				t.Errorf("Decode() error = %v, want ErrUnreadableFormat", err)
			}
		})
	}
}

func TestDecodeFile(t *testing.T) {
	f, err := os.Open(testFile)
	if err != nil {
		t.Skipf("no FLAC test file present: %v", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.NumFrames() == 0 {
		t.Error("decoded signal has no frames")
	}
	if s.Rate() <= 0 || s.NumChannels() < 1 {
		t.Errorf("decoded format invalid: %v Hz, %v channels", s.Rate(), s.NumChannels())
	}
}
