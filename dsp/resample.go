/*
NAME
  resample.go

DESCRIPTION
  resample.go contains frequency-domain resampling of Signals, used to bring
  a test recording onto the sample rate of the reference recording before
  correlation.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package dsp provides the signal processing used by the pass-by detection
// pipeline: frequency-domain resampling and cross-correlation matching.
package dsp

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/ausocean/passby/audio"
)

// ErrInvalidRate is returned when a resample target rate is not positive.
var ErrInvalidRate = fmt.Errorf("invalid target sample rate")

// Resample converts s to the target rate using FFT resampling applied
// independently per channel. The result has round(n*rate/s.Rate()) frames
// and the same channel count and ordering as s. When the target rate equals
// the signal's rate, s is returned unchanged without copying. The input is
// never mutated.
func Resample(s audio.Signal, rate int) (audio.Signal, error) {
	if rate <= 0 {
		return audio.Signal{}, fmt.Errorf("%w: %d", ErrInvalidRate, rate)
	}
	if rate == s.Rate() {
		return s, nil
	}

	n := s.NumFrames()
	channels := s.NumChannels()
	newN := int(math.Round(float64(n) * float64(rate) / float64(s.Rate())))

	out := make([]float64, newN*channels)
	for c := 0; c < channels; c++ {
		res := resampleChannel(s.Channel(c), newN)
		for i, v := range res {
			out[i*channels+c] = v
		}
	}
	return audio.New(rate, channels, out)
}

// resampleChannel resamples one channel of length n to length m by moving to
// the frequency domain, truncating or zero padding the spectrum about the
// Nyquist fold, and transforming back.
func resampleChannel(x []float64, m int) []float64 {
	n := len(x)
	if n == 0 || m == 0 {
		return make([]float64, m)
	}

	X := fft.FFTReal(x)
	Y := make([]complex128, m)

	keep := n
	if m < keep {
		keep = m
	}
	pos := (keep + 1) / 2 // DC and positive frequency bins.
	neg := keep / 2       // Negative frequency bins.
	copy(Y[:pos], X[:pos])
	for i := 1; i <= neg; i++ {
		Y[m-i] = X[n-i]
	}

	y := fft.IFFT(Y)
	gain := float64(m) / float64(n)
	res := make([]float64, m)
	for i, v := range y {
		res[i] = real(v) * gain
	}
	return res
}
