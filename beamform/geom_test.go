/*
NAME
  geom_test.go

DESCRIPTION
  geom_test.go provides testing for microphone geometry loading.

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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const geomDoc = `<?xml version="1.0" encoding="utf-8"?>
<MicArray name="4_linear">
  <pos Name="Point 1" x="-0.15" y="0" z="0"/>
  <pos Name="Point 2" x="-0.05" y="0" z="0"/>
  <pos Name="Point 3" x="0.05" y="0" z="0"/>
  <pos Name="Point 4" x="0.15" y="0" z="0"/>
</MicArray>
`

func TestDecodeMicGeom(t *testing.T) {
	mg, err := DecodeMicGeom(strings.NewReader(geomDoc))
	if err != nil {
		t.Fatalf("DecodeMicGeom failed: %v", err)
	}
	if mg.Name != "4_linear" {
		t.Errorf("Name = %q, want %q", mg.Name, "4_linear")
	}
	want := [][3]float64{{-0.15, 0, 0}, {-0.05, 0, 0}, {0.05, 0, 0}, {0.15, 0, 0}}
	if diff := cmp.Diff(want, mg.Pos); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if mg.NumMics() != 4 {
		t.Errorf("NumMics() = %v, want 4", mg.NumMics())
	}
}

func TestDecodeMicGeomInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "not xml", in: "microphones live here"},
		{name: "no positions", in: `<MicArray name="empty"></MicArray>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeMicGeom(strings.NewReader(tt.in)); err == nil {
				t.Error("DecodeMicGeom succeeded, want error")
			}
		})
	}
}

func TestReadMicGeom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "4_linear.xml")
	if err := os.WriteFile(path, []byte(geomDoc), 0o644); err != nil {
		t.Fatalf("could not write geometry file: %v", err)
	}
	mg, err := ReadMicGeom(path)
	if err != nil {
		t.Fatalf("ReadMicGeom failed: %v", err)
	}
	if mg.NumMics() != 4 {
		t.Errorf("NumMics() = %v, want 4", mg.NumMics())
	}

	if _, err := ReadMicGeom(filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Error("ReadMicGeom(missing) succeeded, want error")
	}
}
