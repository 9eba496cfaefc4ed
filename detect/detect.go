/*
NAME
  detect.go

DESCRIPTION
  detect.go provides the detection pipeline: load reference and test
  recordings, resample the test onto the reference rate, match against the
  reference sound, and if matched beamform to infer the direction of travel.

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


// Package detect sequences the pass-by detection pipeline. A Detector holds
// validated configuration only; every Detect call is independent, so
// detecting across many recordings may run one Detect per goroutine.
package detect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/passby/audio"
	"github.com/ausocean/passby/beamform"
	"github.com/ausocean/passby/codec/flac"
	"github.com/ausocean/passby/codec/wav"
	"github.com/ausocean/passby/container/tsd"
	"github.com/ausocean/passby/dsp"
)

// Default configuration values.
const (
	defaultRefFreq = 8000.0 // Hz, beamformer synthesis band centre.
)

// Config holds the parameters of a detection pipeline.
type Config struct {
	// Logger is used to report pipeline progress. If nil, logging is off.
	Logger logging.Logger

	// Threshold is the correlation match threshold. The zero value selects
	// dsp.DefaultThreshold; to make every non-silent recording match, use a
	// small positive value instead. Negative thresholds are rejected.
	Threshold float64

	// Normalization selects the correlation normalisation. The zero value
	// is the compatibility peak normalisation.
	Normalization dsp.Normalization

	// RefFreq is the centre frequency in Hz of the beamformer synthesis
	// band. Defaults to 8 kHz.
	RefFreq float64

	// BlockSize is the beamformer analysis block size in frames. Defaults
	// to beamform.DefaultBlockSize.
	BlockSize int

	// Grid is the beamformer search region. The zero value selects
	// beamform.DefaultGrid.
	Grid beamform.RectGrid
}

// Validate fills in default values and checks the configuration.
func (c *Config) Validate() error {
	if c.Threshold == 0 {
		c.Threshold = dsp.DefaultThreshold
	}
	if c.Threshold < 0 {
		return fmt.Errorf("threshold %v must not be negative", c.Threshold)
	}
	if c.RefFreq == 0 {
		c.RefFreq = defaultRefFreq
	}
	if c.RefFreq < 0 {
		return fmt.Errorf("reference frequency %v must be positive", c.RefFreq)
	}
	if c.BlockSize == 0 {
		c.BlockSize = beamform.DefaultBlockSize
	}
	if c.BlockSize < 0 {
		return fmt.Errorf("block size %v must be positive", c.BlockSize)
	}
	if c.Grid == (beamform.RectGrid{}) {
		c.Grid = beamform.DefaultGrid()
	}
	return c.Grid.Validate()
}

// Event records a single detection.
type Event struct {
	Time      time.Time
	Direction beamform.Direction

	// Power is the beamformed power map behind the direction estimate,
	// kept for inspection and rendering.
	Power *beamform.PowerMap
}

// Report summarises a pipeline run. It is a value returned to the caller;
// the pipeline holds no accumulating state between runs.
type Report struct {
	Detections int
	Events     []Event
}

// Detector runs detection pipelines with a fixed configuration.
type Detector struct {
	cfg Config
}

// New validates cfg and returns a Detector.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bad config: %w", err)
	}
	return &Detector{cfg: cfg}, nil
}

// Detect runs the pipeline on one recording: load the reference and test
// signals, resample the test to the reference rate, and if the test matches
// the reference sound, beamform with the array geometry at geomPath and
// record a detection event. The report is returned even when nothing was
// detected; any stage failure aborts the run.
func (d *Detector) Detect(refPath, testPath, geomPath string) (*Report, error) {
	ref, err := LoadSignal(refPath)
	if err != nil {
		return nil, fmt.Errorf("could not load reference %s: %w", refPath, err)
	}
	test, err := LoadSignal(testPath)
	if err != nil {
		return nil, fmt.Errorf("could not load test recording %s: %w", testPath, err)
	}
	d.log().Debug("signals loaded", "refFrames", ref.NumFrames(), "refRate", ref.Rate(),
		"testFrames", test.NumFrames(), "testRate", test.Rate())

	test, err = dsp.Resample(test, ref.Rate())
	if err != nil {
		return nil, fmt.Errorf("could not resample test recording: %w", err)
	}

	report := &Report{}
	m := dsp.Matcher{Threshold: d.cfg.Threshold, Normalization: d.cfg.Normalization}
	if !m.Match(ref, test) {
		d.log().Info("no match against reference", "test", testPath)
		return report, nil
	}

	geom, err := beamform.ReadMicGeom(geomPath)
	if err != nil {
		return nil, fmt.Errorf("could not load geometry %s: %w", geomPath, err)
	}
	bf, err := beamform.New(geom, d.cfg.Grid, beamform.WithBlockSize(d.cfg.BlockSize))
	if err != nil {
		return nil, fmt.Errorf("could not create beamformer: %w", err)
	}
	pm, err := bf.Process(test, d.cfg.RefFreq)
	if err != nil {
		return nil, fmt.Errorf("could not beamform: %w", err)
	}

	ev := Event{Time: time.Now(), Direction: pm.Direction(), Power: pm}
	report.Events = append(report.Events, ev)
	report.Detections++
	d.log().Info("car detected", "test", testPath, "direction", ev.Direction.String())
	return report, nil
}

// log returns the configured logger, or a no-op logger when none was given.
func (d *Detector) log() logging.Logger {
	if d.cfg.Logger != nil {
		return d.cfg.Logger
	}
	return nopLogger{}
}

// LoadSignal reads an audio container into a Signal, choosing the decoder
// from the file extension: .wav, .flac or .tsd. The file handle does not
// outlive the call.
func LoadSignal(path string) (audio.Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Signal{}, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return wav.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".tsd":
		return tsd.Read(f)
	default:
		return audio.Signal{}, fmt.Errorf("%w: unknown container extension %q", audio.ErrUnreadableFormat, ext)
	}
}

// nopLogger discards all messages.
type nopLogger struct{}

func (nopLogger) SetLevel(int8)                    {}
func (nopLogger) Log(int8, string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})     {}
func (nopLogger) Info(string, ...interface{})      {}
func (nopLogger) Warning(string, ...interface{})   {}
func (nopLogger) Error(string, ...interface{})     {}
func (nopLogger) Fatal(string, ...interface{})     {}
