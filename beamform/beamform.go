/*
NAME
  beamform.go

DESCRIPTION
  beamform.go implements frequency-domain delay-and-sum beamforming over a
  rectangular search grid and inference of the direction of travel from the
  beamformed power map.

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
	"math"
	"math/cmplx"

	"github.com/ausocean/passby/audio"
)

// Physical and synthesis constants.
const (
	// SpeedOfSound is the propagation speed used for steering delays (m/s).
	SpeedOfSound = 343.0

	// thirdOctave is the half-band edge ratio 2^(1/6) of a one-third-octave
	// band: power is integrated over [f/thirdOctave, f*thirdOctave].
	thirdOctave = 1.1224620483089702 // math.Pow(2, 1.0/6)

	// refPower is the reference power for dB conversion, (2e-5 Pa)^2.
	refPower = 4e-10

	// dbFloor replaces the level of cells with no positive power so that
	// power maps stay renderable.
	dbFloor = -350.0
)

// ErrGeometryMismatch is returned when a signal's channel count does not
// equal the number of microphones in the array geometry.
var ErrGeometryMismatch = fmt.Errorf("channel count does not match microphone count")

// Direction is the coarse direction of travel inferred from a power map.
type Direction int

const (
	RightToLeft Direction = iota
	LeftToRight
)

// String returns the direction label.
func (d Direction) String() string {
	if d == LeftToRight {
		return "left-to-right"
	}
	return "right-to-left"
}

// Option configures a Beamformer.
type Option func(*Beamformer) error

// WithBlockSize sets the analysis block size used for the cross-spectral
// matrices.
func WithBlockSize(n int) Option {
	return func(b *Beamformer) error {
		if n <= 0 {
			return fmt.Errorf("bad block size: %d", n)
		}
		b.blockSize = n
		return nil
	}
}

// WithSoundSpeed overrides the propagation speed used for steering delays.
func WithSoundSpeed(c float64) Option {
	return func(b *Beamformer) error {
		if c <= 0 {
			return fmt.Errorf("bad speed of sound: %v", c)
		}
		b.c = c
		return nil
	}
}

// Beamformer computes delay-and-sum power maps for signals recorded by a
// fixed microphone array over a fixed search grid. The geometry is
// referenced, not copied; it must not change between calls.
type Beamformer struct {
	geom      *MicGeom
	grid      RectGrid
	blockSize int
	c         float64
}

// New creates a Beamformer for the given array geometry and search grid.
func New(geom *MicGeom, grid RectGrid, opts ...Option) (*Beamformer, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	b := &Beamformer{geom: geom, grid: grid, blockSize: DefaultBlockSize, c: SpeedOfSound}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Process beamforms s over the search grid, integrating power over the
// one-third-octave band centred on refFreq, and returns the resulting power
// map in dB. It fails with ErrGeometryMismatch if the channel count of s
// does not equal the number of microphones.
func (b *Beamformer) Process(s audio.Signal, refFreq float64) (*PowerMap, error) {
	m := b.geom.NumMics()
	if s.NumChannels() != m {
		return nil, fmt.Errorf("%w: %d channels, %d microphones", ErrGeometryMismatch, s.NumChannels(), m)
	}

	ps, err := NewPowerSpectra(s, b.blockSize)
	if err != nil {
		return nil, fmt.Errorf("could not compute power spectra: %w", err)
	}

	// Bins inside the one-third-octave synthesis band.
	lo, hi := refFreq/thirdOctave, refFreq*thirdOctave
	var bins []int
	for f := 1; f < ps.NumBins(); f++ {
		if fr := ps.Freq(f); fr >= lo && fr <= hi {
			bins = append(bins, f)
		}
	}
	if len(bins) == 0 {
		return nil, fmt.Errorf("no frequency bins in band [%v,%v] Hz at rate %v", lo, hi, s.Rate())
	}

	nx, ny := b.grid.NX(), b.grid.NY()
	pm := &PowerMap{grid: b.grid, nx: nx, ny: ny, db: make([]float64, nx*ny)}
	w := make([]complex128, m)
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			cell := [3]float64{b.grid.X(ix), b.grid.Y(iy), b.grid.Z}

			var power float64
			for _, f := range bins {
				// Unit-amplitude steering weights from the expected phase
				// delay of a point source at the cell.
				freq := ps.Freq(f)
				for i := 0; i < m; i++ {
					tau := dist(cell, b.geom.Pos[i]) / b.c
					w[i] = cmplx.Exp(complex(0, -2*math.Pi*freq*tau)) / complex(float64(m), 0)
				}
				// Delay-and-sum power: Re(w^H C w).
				csm := ps.CSM(f)
				var p complex128
				for i := 0; i < m; i++ {
					for j := 0; j < m; j++ {
						p += cmplx.Conj(w[i]) * csm.At(i, j) * w[j]
					}
				}
				power += real(p)
			}

			if power > 0 {
				pm.db[iy*nx+ix] = 10 * math.Log10(power/refPower)
			} else {
				pm.db[iy*nx+ix] = dbFloor
			}
		}
	}
	return pm, nil
}

func dist(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
