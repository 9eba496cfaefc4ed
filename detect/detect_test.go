/*
NAME
  detect_test.go

DESCRIPTION
  detect_test.go provides end to end testing of the detection pipeline.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package detect

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/passby/audio"
	"github.com/ausocean/passby/beamform"
	"github.com/ausocean/passby/codec/wav"
	"github.com/ausocean/passby/container/tsd"
)

const geomDoc = `<?xml version="1.0" encoding="utf-8"?>
<MicArray name="2_linear">
  <pos Name="Point 1" x="-0.05" y="0" z="0"/>
  <pos Name="Point 2" x="0.05" y="0" z="0"/>
</MicArray>
`

// writeWAV writes a quantised stereo tone of the given rate and duration to
// path so that encode/decode round trips exactly.
func writeWAV(t *testing.T, path string, rate int, seconds, freq float64) {
	t.Helper()
	frames := int(float64(rate) * seconds)
	data := make([]float64, frames*2)
	for i := 0; i < frames; i++ {
		v := float64(int(0.5*math.Sin(2*math.Pi*freq*float64(i)/float64(rate))*32767)) / 32768
		data[i*2] = v
		data[i*2+1] = v
	}
	s, err := audio.New(rate, 2, data)
	if err != nil {
		t.Fatalf("could not create signal: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("could not create %s: %v", path, err)
	}
	defer f.Close()
	if err := wav.Encode(f, s, 16); err != nil {
		t.Fatalf("could not encode %s: %v", path, err)
	}
}

func writeGeom(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "2_linear.xml")
	if err := os.WriteFile(path, []byte(geomDoc), 0o644); err != nil {
		t.Fatalf("could not write geometry: %v", err)
	}
	return path
}

func TestDetectEndToEnd(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference.wav")
	testPath := filepath.Join(dir, "passby.wav")

	// Reference tone at 16 kHz and the same tone recorded at 8 kHz; the
	// pipeline resamples the test back onto the reference rate.
	writeWAV(t, refPath, 16000, 1, 440)
	writeWAV(t, testPath, 8000, 1, 440)
	geomPath := writeGeom(t, dir)

	d, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	report, err := d.Detect(refPath, testPath, geomPath)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if report.Detections != 1 {
		t.Fatalf("Detections = %v, want 1", report.Detections)
	}
	if len(report.Events) != 1 {
		t.Fatalf("len(Events) = %v, want 1", len(report.Events))
	}
	ev := report.Events[0]
	if ev.Time.IsZero() {
		t.Error("event has zero timestamp")
	}
	if ev.Power == nil {
		t.Error("event has no power map")
	}
	switch ev.Direction {
	case beamform.LeftToRight, beamform.RightToLeft:
	default:
		t.Errorf("event direction = %v, not a valid label", ev.Direction)
	}
}

func TestDetectNoMatch(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference.wav")
	testPath := filepath.Join(dir, "silence.wav")

	writeWAV(t, refPath, 16000, 1, 440)
	// Silence correlates to exactly zero, which never matches.
	writeWAV(t, testPath, 16000, 1, 0)
	geomPath := writeGeom(t, dir)

	d, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	report, err := d.Detect(refPath, testPath, geomPath)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if report.Detections != 0 || len(report.Events) != 0 {
		t.Errorf("report = %+v, want empty report", report)
	}
}

func TestDetectMissingInputs(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference.wav")
	writeWAV(t, refPath, 16000, 1, 440)
	geomPath := writeGeom(t, dir)

	d, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := d.Detect(filepath.Join(dir, "nope.wav"), refPath, geomPath); err == nil {
		t.Error("Detect with missing reference succeeded")
	}
	if _, err := d.Detect(refPath, filepath.Join(dir, "nope.wav"), geomPath); err == nil {
		t.Error("Detect with missing test recording succeeded")
	}
	if _, err := d.Detect(refPath, refPath, filepath.Join(dir, "nope.xml")); err == nil {
		t.Error("Detect with missing geometry succeeded")
	}
}

func TestLoadSignalByExtension(t *testing.T) {
	dir := t.TempDir()

	wavPath := filepath.Join(dir, "clip.wav")
	writeWAV(t, wavPath, 16000, 0.1, 440)
	s, err := LoadSignal(wavPath)
	if err != nil {
		t.Fatalf("LoadSignal(wav) failed: %v", err)
	}
	if s.Rate() != 16000 || s.NumChannels() != 2 {
		t.Errorf("wav signal = %v Hz %v channels, want 16000 Hz stereo", s.Rate(), s.NumChannels())
	}

	tsdPath := filepath.Join(dir, "clip.tsd")
	f, err := os.Create(tsdPath)
	if err != nil {
		t.Fatalf("could not create tsd: %v", err)
	}
	if err := tsd.Write(f, s); err != nil {
		t.Fatalf("could not write tsd: %v", err)
	}
	f.Close()
	s2, err := LoadSignal(tsdPath)
	if err != nil {
		t.Fatalf("LoadSignal(tsd) failed: %v", err)
	}
	if !s2.Equal(s) {
		t.Error("tsd round trip through LoadSignal not identical")
	}

	if _, err := LoadSignal(filepath.Join(dir, "clip.mp3")); !errors.Is(err, audio.ErrUnreadableFormat) {
		// Unknown extensions fail before touching the file contents, but
		// the file must exist.
		if !os.IsNotExist(err) {
			t.Errorf("LoadSignal(mp3) error = %v, want unreadable format or not exist", err)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Threshold != 0.7 || cfg.RefFreq != 8000 || cfg.BlockSize != 128 {
		t.Errorf("defaults = %v/%v/%v, want 0.7/8000/128", cfg.Threshold, cfg.RefFreq, cfg.BlockSize)
	}
	if cfg.Grid != beamform.DefaultGrid() {
		t.Errorf("default grid = %+v, want %+v", cfg.Grid, beamform.DefaultGrid())
	}

	bad := Config{BlockSize: -1}
	if err := bad.Validate(); err == nil {
		t.Error("Validate accepted negative block size")
	}
	negThresh := Config{Threshold: -0.1}
	if err := negThresh.Validate(); err == nil {
		t.Error("Validate accepted negative threshold")
	}
	lowThresh := Config{Threshold: 0.01}
	if err := lowThresh.Validate(); err != nil {
		t.Errorf("Validate rejected small positive threshold: %v", err)
	}
	if lowThresh.Threshold != 0.01 {
		t.Errorf("Threshold = %v after Validate, want 0.01", lowThresh.Threshold)
	}
	badGrid := Config{Grid: beamform.RectGrid{XMin: 1, XMax: -1, YMin: -1, YMax: 1, Increment: 0.05}}
	if err := badGrid.Validate(); err == nil {
		t.Error("Validate accepted degenerate grid")
	}
}
