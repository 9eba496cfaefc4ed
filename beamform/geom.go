/*
NAME
  geom.go

DESCRIPTION
  geom.go provides loading of microphone array geometry from its XML
  description.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package beamform implements frequency-domain delay-and-sum beamforming of
// multi-channel audio over a planar search grid, along with inference of the
// coarse direction of travel from the resulting power map.
package beamform

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// MicGeom holds the positions of the microphones in an array, index-aligned
// with the channels of the signals recorded by it. It is immutable once
// loaded.
type MicGeom struct {
	Name string
	Pos  [][3]float64
}

// micArrayXML mirrors the on-disk geometry document:
//
//	<MicArray name="4_linear">
//	  <pos Name="Point 1" x="-0.15" y="0" z="0"/>
//	  ...
//	</MicArray>
type micArrayXML struct {
	XMLName xml.Name `xml:"MicArray"`
	Name    string   `xml:"name,attr"`
	Pos     []struct {
		X float64 `xml:"x,attr"`
		Y float64 `xml:"y,attr"`
		Z float64 `xml:"z,attr"`
	} `xml:"pos"`
}

// DecodeMicGeom parses a microphone array geometry document from r.
func DecodeMicGeom(r io.Reader) (*MicGeom, error) {
	var doc micArrayXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not parse geometry: %w", err)
	}
	if len(doc.Pos) == 0 {
		return nil, fmt.Errorf("geometry defines no microphone positions")
	}

	mg := &MicGeom{Name: doc.Name, Pos: make([][3]float64, len(doc.Pos))}
	for i, p := range doc.Pos {
		mg.Pos[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return mg, nil
}

// ReadMicGeom loads a microphone array geometry from the file at path.
func ReadMicGeom(path string) (*MicGeom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open geometry file: %w", err)
	}
	defer f.Close()
	return DecodeMicGeom(f)
}

// NumMics returns the number of microphones in the array.
func (mg *MicGeom) NumMics() int { return len(mg.Pos) }
