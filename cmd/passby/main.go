/*
NAME
  passby - acoustic vehicle pass-by detector.

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


// Package passby is a command for detecting vehicle pass-bys in recorded
// audio. A test recording is matched against a reference "stationary car"
// sound; on a match the recording is beamformed over the microphone array
// geometry to label the direction of travel. With -watch, a directory is
// monitored and each new recording is processed independently.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/ausocean/utils/logging"
	"github.com/fsnotify/fsnotify"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/passby/detect"
	"github.com/ausocean/passby/dsp"
)

// Logging related constants.
const (
	progName     = "passby"
	logPath      = "/var/log/passby/passby.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

func main() {
	var (
		refPtr       = flag.String("ref", "", "Path to the reference stationary car recording.")
		inPtr        = flag.String("in", "", "Path to the test recording to analyse.")
		watchPtr     = flag.String("watch", "", "Directory to watch; each new recording is analysed independently.")
		geomPtr      = flag.String("geom", "", "Path to the microphone array geometry XML.")
		thresholdPtr = flag.Float64("threshold", dsp.DefaultThreshold, "Correlation match threshold.")
		energyPtr    = flag.Bool("energy-norm", false, "Use energy normalisation for correlation instead of the legacy peak normalisation.")
		freqPtr      = flag.Float64("freq", 8000, "Beamformer synthesis band centre frequency in Hz.")
		blockPtr     = flag.Int("block", 128, "Beamformer analysis block size in frames.")
		plotPtr      = flag.String("plot", "", "Write a heat map PNG of the beamformed power map to this path.")
		logLevel     = flag.Int("LogLevel", int(logging.Info), "Specifies log level")
	)
	flag.Parse()

	if *logLevel < int(logging.Debug) || *logLevel > int(logging.Fatal) {
		*logLevel = int(logging.Info)
	}
	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(int8(*logLevel), io.MultiWriter(fileLog, os.Stderr), logSuppress)
	log.Info(progName + ": logger initialized")

	if *refPtr == "" || *geomPtr == "" {
		log.Fatal("both -ref and -geom must be given")
	}
	if (*inPtr == "") == (*watchPtr == "") {
		log.Fatal("exactly one of -in or -watch must be given")
	}

	cfg := detect.Config{
		Logger:    log,
		Threshold: *thresholdPtr,
		RefFreq:   *freqPtr,
		BlockSize: *blockPtr,
	}
	if *energyPtr {
		cfg.Normalization = dsp.NormEnergy
	}
	d, err := detect.New(cfg)
	if err != nil {
		log.Fatal("could not create detector", "error", err.Error())
	}

	if *inPtr != "" {
		report, err := d.Detect(*refPtr, *inPtr, *geomPtr)
		if err != nil {
			log.Fatal("detection failed", "error", err.Error())
		}
		printReport(report, *inPtr)
		if *plotPtr != "" && len(report.Events) != 0 {
			err = savePowerMap(report.Events[0], *plotPtr)
			if err != nil {
				log.Fatal("could not render power map", "error", err.Error())
			}
			log.Info("power map written", "path", *plotPtr)
		}
		return
	}

	watch(d, log, *watchPtr, *refPtr, *geomPtr)
}

// watch monitors dir and runs one independent detection pipeline per newly
// created recording. Pipelines share no state, so each runs in its own
// goroutine.
func watch(d *detect.Detector, log logging.Logger, dir, ref, geom string) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal("could not create watcher", "error", err.Error())
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		log.Fatal("could not watch directory", "dir", dir, "error", err.Error())
	}
	log.Info("watching for recordings", "dir", dir)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				wg.Wait()
				return
			}
			if !ev.Has(fsnotify.Create) || !knownContainer(ev.Name) {
				continue
			}
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				report, err := d.Detect(ref, path, geom)
				if err != nil {
					log.Error("detection failed", "file", path, "error", err.Error())
					return
				}
				printReport(report, path)
			}(ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				wg.Wait()
				return
			}
			log.Error("watcher error", "error", err.Error())
		case <-sig:
			log.Info("interrupted; waiting for running pipelines")
			wg.Wait()
			return
		}
	}
}

func knownContainer(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".flac", ".tsd":
		return true
	}
	return false
}

func printReport(r *detect.Report, in string) {
	for _, ev := range r.Events {
		fmt.Printf("Car detected in %s, moving %s.\n", filepath.Base(in), ev.Direction)
	}
	fmt.Printf("Total cars detected: %d\n", r.Detections)
	if len(r.Events) != 0 {
		fmt.Print("Detection times:")
		for _, ev := range r.Events {
			fmt.Printf(" %v", ev.Time.Format("15:04:05.000"))
		}
		fmt.Println()
	}
}

// savePowerMap renders the beamformed power map behind ev as a heat map PNG.
func savePowerMap(ev detect.Event, path string) error {
	p := plot.New()
	p.Title.Text = "Beamformed power (dB), " + ev.Direction.String()
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	pal := moreland.SmoothBlueRed().Palette(255)
	p.Add(plotter.NewHeatMap(ev.Power, pal))
	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}
