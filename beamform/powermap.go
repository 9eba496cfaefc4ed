/*
NAME
  powermap.go

DESCRIPTION
  powermap.go provides the PowerMap produced by beamforming and the
  direction inference drawn from its peak.

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

// PowerMap is a dense lattice of beamformed power levels in dB, one cell per
// search grid location, stored row-major with columns along the horizontal
// (x) axis: cell (ix, iy) is db[iy*nx+ix].
type PowerMap struct {
	grid   RectGrid
	nx, ny int
	db     []float64
}

// At returns the level in dB of cell (ix, iy).
func (p *PowerMap) At(ix, iy int) float64 { return p.db[iy*p.nx+ix] }

// Peak returns the lattice indices of the loudest cell. Ties are broken by
// first occurrence in row-major order.
func (p *PowerMap) Peak() (ix, iy int) {
	best := 0
	for i, v := range p.db {
		if v > p.db[best] {
			best = i
		}
	}
	return best % p.nx, best / p.nx
}

// Direction infers the coarse direction of travel from the peak location:
// strictly right of the horizontal grid centre means left-to-right, at or
// left of centre means right-to-left. This captures left/right bias at a
// single instant, not a trajectory.
func (p *PowerMap) Direction() Direction {
	ix, _ := p.Peak()
	if ix > p.nx/2 {
		return LeftToRight
	}
	return RightToLeft
}

// Dims returns the number of columns and rows in the map. Together with X,
// Y and Z below this satisfies gonum/plot's plotter.GridXYZ, so a PowerMap
// can be rendered as a heat map directly.
func (p *PowerMap) Dims() (c, r int) { return p.nx, p.ny }

// Z returns the level in dB of the cell in column c, row r.
func (p *PowerMap) Z(c, r int) float64 { return p.db[r*p.nx+c] }

// X returns the x coordinate of column c in metres.
func (p *PowerMap) X(c int) float64 { return p.grid.X(c) }

// Y returns the y coordinate of row r in metres.
func (p *PowerMap) Y(r int) float64 { return p.grid.Y(r) }
