/*
NAME
  spectra.go

DESCRIPTION
  spectra.go computes the blockwise windowed cross-spectral matrix of a
  multi-channel Signal, the frequency-domain covariance the beamformer
  steers against.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package beamform

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/passby/audio"
)

// DefaultBlockSize is the number of frames per analysis block.
const DefaultBlockSize = 128

// PowerSpectra holds the per-bin cross-spectral matrices (CSM) of a signal,
// averaged over Hann-windowed non-overlapping blocks.
type PowerSpectra struct {
	blockSize int
	rate      int
	channels  int
	csm       []*mat.CDense // One channels x channels matrix per bin.
}

// NewPowerSpectra computes the cross-spectral matrices of s using the given
// block size. The signal must contain at least one full block.
func NewPowerSpectra(s audio.Signal, blockSize int) (*PowerSpectra, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size %d must be positive", blockSize)
	}
	channels := s.NumChannels()
	nBlocks := s.NumFrames() / blockSize
	if nBlocks == 0 {
		return nil, fmt.Errorf("%w: %d frames is less than one %d frame block", audio.ErrEmptyStream, s.NumFrames(), blockSize)
	}

	nBins := blockSize/2 + 1
	ps := &PowerSpectra{
		blockSize: blockSize,
		rate:      s.Rate(),
		channels:  channels,
		csm:       make([]*mat.CDense, nBins),
	}
	for f := range ps.csm {
		ps.csm[f] = mat.NewCDense(channels, channels, nil)
	}

	win := window.Hann(blockSize)
	var winPow float64
	for _, w := range win {
		winPow += w * w
	}

	chans := make([][]float64, channels)
	for c := range chans {
		chans[c] = s.Channel(c)
	}

	// Per-block per-channel spectra, accumulated as outer products.
	spectra := make([][]complex128, channels)
	block := make([]float64, blockSize)
	for b := 0; b < nBlocks; b++ {
		for c := 0; c < channels; c++ {
			for i := 0; i < blockSize; i++ {
				block[i] = chans[c][b*blockSize+i] * win[i]
			}
			spectra[c] = fft.FFTReal(block)
		}
		for f := 0; f < nBins; f++ {
			for i := 0; i < channels; i++ {
				for j := 0; j < channels; j++ {
					v := ps.csm[f].At(i, j)
					ps.csm[f].Set(i, j, v+spectra[i][f]*cmplx.Conj(spectra[j][f]))
				}
			}
		}
	}

	// Average over blocks and compensate for the window power.
	scale := complex(1/(float64(nBlocks)*winPow), 0)
	for f := 0; f < nBins; f++ {
		for i := 0; i < channels; i++ {
			for j := 0; j < channels; j++ {
				ps.csm[f].Set(i, j, ps.csm[f].At(i, j)*scale)
			}
		}
	}
	return ps, nil
}

// NumBins returns the number of frequency bins, blockSize/2+1.
func (ps *PowerSpectra) NumBins() int { return len(ps.csm) }

// NumChannels returns the channel count of the analysed signal.
func (ps *PowerSpectra) NumChannels() int { return ps.channels }

// Freq returns the centre frequency in Hz of bin f.
func (ps *PowerSpectra) Freq(f int) float64 {
	return float64(f) * float64(ps.rate) / float64(ps.blockSize)
}

// CSM returns the cross-spectral matrix for bin f. The returned matrix is
// shared; callers must not modify it.
func (ps *PowerSpectra) CSM(f int) *mat.CDense { return ps.csm[f] }
