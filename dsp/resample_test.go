/*
NAME
  resample_test.go

DESCRIPTION
  resample_test.go provides testing for frequency-domain resampling.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package dsp

import (
	"errors"
	"math"
	"testing"

	"github.com/ausocean/passby/audio"
)

// tone builds a multi-channel sine Signal for test input.
func tone(t *testing.T, rate, channels, frames int, freq float64) audio.Signal {
	t.Helper()
	data := make([]float64, frames*channels)
	for i := 0; i < frames; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / float64(rate))
		for c := 0; c < channels; c++ {
			data[i*channels+c] = v * float64(c+1) / float64(channels)
		}
	}
	s, err := audio.New(rate, channels, data)
	if err != nil {
		t.Fatalf("could not create signal: %v", err)
	}
	return s
}

func TestResampleIdentity(t *testing.T) {
	s := tone(t, 16000, 2, 1600, 440)
	got, err := Resample(s, 16000)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if !got.Equal(s) {
		t.Error("identity resample altered the signal")
	}
}

func TestResampleFrameCount(t *testing.T) {
	tests := []struct {
		name   string
		rate   int
		frames int
		target int
	}{
		{name: "halve", rate: 16000, frames: 16000, target: 8000},
		{name: "double", rate: 8000, frames: 8000, target: 16000},
		{name: "odd ratio", rate: 44100, frames: 4410, target: 16000},
		{name: "tiny", rate: 8000, frames: 37, target: 11025},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tone(t, tt.rate, 2, tt.frames, 440)
			got, err := Resample(s, tt.target)
			if err != nil {
				t.Fatalf("Resample failed: %v", err)
			}
			want := int(math.Round(float64(tt.frames) * float64(tt.target) / float64(tt.rate)))
			if d := got.NumFrames() - want; d < -1 || d > 1 {
				t.Errorf("frame count = %v, want %v (±1)", got.NumFrames(), want)
			}
			if got.Rate() != tt.target {
				t.Errorf("rate = %v, want %v", got.Rate(), tt.target)
			}
			if got.NumChannels() != s.NumChannels() {
				t.Errorf("channels = %v, want %v", got.NumChannels(), s.NumChannels())
			}
		})
	}
}

func TestResampleTonePreserved(t *testing.T) {
	// A mid-band sine should survive a down-up round trip closely.
	const rate, frames = 16000, 1600
	s := tone(t, rate, 1, frames, 1000)

	down, err := Resample(s, 8000)
	if err != nil {
		t.Fatalf("downsample failed: %v", err)
	}
	up, err := Resample(down, rate)
	if err != nil {
		t.Fatalf("upsample failed: %v", err)
	}

	want := s.Channel(0)
	got := up.Channel(0)
	n := len(want)
	if len(got) < n {
		n = len(got)
	}
	// Ignore the block edges where FFT periodicity causes ringing.
	var maxErr float64
	for i := n / 10; i < n-n/10; i++ {
		if e := math.Abs(got[i] - want[i]); e > maxErr {
			maxErr = e
		}
	}
	if maxErr > 0.05 {
		t.Errorf("round trip error = %v, want < 0.05", maxErr)
	}
}

func TestResampleDoesNotMutateInput(t *testing.T) {
	s := tone(t, 16000, 2, 320, 440)
	orig := s.Interleaved()
	if _, err := Resample(s, 8000); err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	after := s.Interleaved()
	for i := range orig {
		if orig[i] != after[i] {
			t.Fatalf("input mutated at sample %d", i)
		}
	}
}

func TestResampleInvalidRate(t *testing.T) {
	s := tone(t, 16000, 1, 160, 440)
	for _, rate := range []int{0, -8000} {
		_, err := Resample(s, rate)
		if !errors.Is(err, ErrInvalidRate) {
			t.Errorf("Resample(%d) error = %v, want ErrInvalidRate", rate, err)
		}
	}
}
