/*
NAME
  audioconv - converts recorded pass-by audio between containers.

AUTHORS
  David Sutton <davidsutton@ausocean.org>
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package audioconv is a command for converting recorded audio between the
// containers used by the pass-by pipeline. The input may be WAV, FLAC or
// tsd; the outputs are chosen by extension, e.g.
//
//	audioconv -in event-0002_speed-057.flac -out event-0002_speed-057.tsd -out event-0002_speed-057.wav
//
// converts a FLAC recording to the tsd container and a WAV copy in one run.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/passby/audio"
	"github.com/ausocean/passby/codec/wav"
	"github.com/ausocean/passby/container/tsd"
	"github.com/ausocean/passby/detect"
)

// Logging related constants.
const (
	progName     = "audioconv"
	logPath      = "/var/log/passby/audioconv.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

// outPaths collects repeated -out flags.
type outPaths []string

func (o *outPaths) String() string { return strings.Join(*o, ",") }

func (o *outPaths) Set(v string) error {
	*o = append(*o, v)
	return nil
}

func main() {
	var outs outPaths
	inPtr := flag.String("in", "", "Path to the input recording (.wav, .flac or .tsd).")
	bitsPtr := flag.Int("bits", wav.DefaultBitDepth, "Bit depth for WAV output.")
	logLevel := flag.Int("LogLevel", int(logging.Info), "Specifies log level")
	flag.Var(&outs, "out", "Output path; repeatable. Format chosen by extension (.wav or .tsd).")
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

	if *inPtr == "" || len(outs) == 0 {
		log.Fatal("-in and at least one -out must be given")
	}

	s, err := detect.LoadSignal(*inPtr)
	if err != nil {
		log.Fatal("could not load input", "path", *inPtr, "error", err.Error())
	}
	log.Info("input loaded", "path", *inPtr, "rate", s.Rate(), "channels", s.NumChannels(), "frames", s.NumFrames())
	fmt.Printf("Number of channels: %d\n", s.NumChannels())

	for _, out := range outs {
		if err := writeSignal(s, out, *bitsPtr); err != nil {
			log.Fatal("could not write output", "path", out, "error", err.Error())
		}
		fmt.Printf("File created at: %s\n", out)
	}
}

// writeSignal stores s at path in the container chosen by extension.
func writeSignal(s audio.Signal, path string, bits int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return wav.Encode(f, s, bits)
	case ".tsd":
		return tsd.Write(f, s)
	default:
		return fmt.Errorf("unknown output container extension %q", ext)
	}
}
