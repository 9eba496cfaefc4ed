/*
NAME
  correlate.go

DESCRIPTION
  correlate.go contains valid-mode cross-correlation of Signals and the
  Matcher used to decide whether a test recording contains the reference
  sound.

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
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ausocean/passby/audio"
)

// DefaultThreshold is the correlation threshold used by NewMatcher.
const DefaultThreshold = 0.7

// Normalization selects how the correlation sequence is normalised before
// the threshold test.
type Normalization int

const (
	// NormPeak divides the correlation sequence by its own maximum. This
	// reproduces the behaviour of the original detector: whenever any
	// correlation value is positive the maximum of the normalised sequence
	// is exactly 1, so the threshold test passes for any threshold below 1.
	// Kept as the default for compatibility.
	NormPeak Normalization = iota

	// NormEnergy divides by the square root of the product of the zero-lag
	// energies of both operands, bounding the result to [-1,1] and making
	// the threshold meaningful.
	NormEnergy
)

// Matcher decides whether two signals contain the same sound event by
// thresholding their normalised valid-mode cross-correlation.
type Matcher struct {
	Threshold     float64
	Normalization Normalization
}

// NewMatcher returns a Matcher with the default threshold and the
// compatibility peak normalisation.
func NewMatcher() Matcher {
	return Matcher{Threshold: DefaultThreshold}
}

// Match reports whether test matches ref. Both signals are first truncated
// to the shorter one's frame count, so the correlation operands always have
// equal length and the valid-mode output has length one; no alignment search
// is performed beyond this truncation. Correlation is computed per channel
// over the common channel count and summed before normalisation. If either
// signal is empty after truncation, Match returns false without error.
func (m Matcher) Match(ref, test audio.Signal) bool {
	n := ref.NumFrames()
	if test.NumFrames() < n {
		n = test.NumFrames()
	}
	if n == 0 {
		return false
	}
	ref = ref.Truncate(n)
	test = test.Truncate(n)

	channels := ref.NumChannels()
	if test.NumChannels() < channels {
		channels = test.NumChannels()
	}

	// Sum per-channel valid-mode correlations.
	var corr []float64
	for c := 0; c < channels; c++ {
		cc := xcorrValid(test.Channel(c), ref.Channel(c))
		if corr == nil {
			corr = cc
			continue
		}
		floats.Add(corr, cc)
	}
	if len(corr) == 0 {
		return false
	}

	switch m.Normalization {
	case NormEnergy:
		var denom float64
		for c := 0; c < channels; c++ {
			r, t := ref.Channel(c), test.Channel(c)
			denom += floats.Dot(r, r) * floats.Dot(t, t)
		}
		if denom <= 0 {
			return false
		}
		return floats.Max(corr)/math.Sqrt(denom) > m.Threshold
	default:
		max := floats.Max(corr)
		if max == 0 {
			return false
		}
		floats.Scale(1/max, corr)
		return floats.Max(corr) > m.Threshold
	}
}

// xcorrValid computes the cross-correlation of a against b restricted to
// full-overlap lags. len(a) must be >= len(b); the result has length
// len(a)-len(b)+1.
func xcorrValid(a, b []float64) []float64 {
	out := make([]float64, len(a)-len(b)+1)
	for k := range out {
		out[k] = floats.Dot(a[k:k+len(b)], b)
	}
	return out
}
