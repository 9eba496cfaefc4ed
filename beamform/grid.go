/*
NAME
  grid.go

DESCRIPTION
  grid.go provides the rectangular search grid scanned by the beamformer.

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
)

// ErrInvalidGrid is returned when grid bounds are degenerate or the
// increment is not positive.
var ErrInvalidGrid = fmt.Errorf("invalid search grid")

// RectGrid describes an axis-aligned planar lattice of candidate source
// locations at a fixed height Z. Lattice points run from the minimum to the
// maximum bound inclusive in steps of Increment.
type RectGrid struct {
	XMin, XMax float64
	YMin, YMax float64
	Z          float64
	Increment  float64
}

// DefaultGrid is the search region used by the detection pipeline unless
// configured otherwise: a 2 m square centred on the array at 0.3 m height
// with 5 cm spacing.
func DefaultGrid() RectGrid {
	return RectGrid{XMin: -1, XMax: 1, YMin: -1, YMax: 1, Z: 0.3, Increment: 0.05}
}

// Validate checks grid bounds and spacing.
func (g RectGrid) Validate() error {
	if g.Increment <= 0 {
		return fmt.Errorf("%w: increment %v must be positive", ErrInvalidGrid, g.Increment)
	}
	if g.XMin >= g.XMax {
		return fmt.Errorf("%w: x bounds [%v,%v] are degenerate", ErrInvalidGrid, g.XMin, g.XMax)
	}
	if g.YMin >= g.YMax {
		return fmt.Errorf("%w: y bounds [%v,%v] are degenerate", ErrInvalidGrid, g.YMin, g.YMax)
	}
	return nil
}

// NX returns the number of lattice steps along the x axis.
func (g RectGrid) NX() int {
	return int(math.Round((g.XMax-g.XMin)/g.Increment)) + 1
}

// NY returns the number of lattice steps along the y axis.
func (g RectGrid) NY() int {
	return int(math.Round((g.YMax-g.YMin)/g.Increment)) + 1
}

// X returns the x coordinate of lattice column i.
func (g RectGrid) X(i int) float64 { return g.XMin + float64(i)*g.Increment }

// Y returns the y coordinate of lattice row j.
func (g RectGrid) Y(j int) float64 { return g.YMin + float64(j)*g.Increment }
