/*
NAME
  passby-record - records pass-by audio from an ALSA device to WAV.

AUTHORS
  Alan Noble <alan@ausocean.org>
  Trek Hopton <trek@ausocean.org>

ACKNOWLEDGEMENTS
  A special thanks to Joel Jensen for his Go ALSA package.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package passby-record is a command for capturing a pass-by recording from
// an ALSA device, e.g. a USB microphone array, straight to a WAV file that
// the detection pipeline can consume.
package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"github.com/ausocean/utils/logging"
	yalsa "github.com/yobert/alsa"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/passby/codec/wav"
)

// Logging related constants.
const (
	progName     = "passby-record"
	logPath      = "/var/log/passby/passby-record.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

// Capture defaults.
const (
	defaultRate     = 48000
	defaultChannels = 2
	defaultBits     = 16
	defaultPeriod   = 5 // seconds
)

func main() {
	var (
		outPtr      = flag.String("out", "passby.wav", "Path of the WAV file to write.")
		sourcePtr   = flag.String("source", "", "Name of the ALSA source, or empty for the first recording device.")
		ratePtr     = flag.Int("rate", defaultRate, "Frame rate in Hz.")
		channelsPtr = flag.Int("channels", defaultChannels, "Number of channels to record.")
		bitsPtr     = flag.Int("bits", defaultBits, "Sample bit size, 16 or 32.")
		periodPtr   = flag.Int("period", defaultPeriod, "Recording length in seconds.")
		logLevel    = flag.Int("LogLevel", int(logging.Info), "Specifies log level")
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

	dev, err := open(log, *sourcePtr, *ratePtr, *channelsPtr, *bitsPtr)
	if err != nil {
		log.Fatal("could not open audio source", "error", err.Error())
	}
	defer dev.Close()

	ab := dev.NewBufferDuration(time.Duration(*periodPtr) * time.Second)
	log.Info("recording", "seconds", *periodPtr, "rate", ab.Format.Rate, "channels", ab.Format.Channels)
	if err := dev.Read(ab.Data); err != nil {
		log.Fatal("could not record audio", "error", err.Error())
	}

	f, err := os.Create(*outPtr)
	if err != nil {
		log.Fatal("could not create output file", "path", *outPtr, "error", err.Error())
	}
	defer f.Close()

	md := wav.Metadata{
		Channels:   int(ab.Format.Channels),
		SampleRate: int(ab.Format.Rate),
		BitDepth:   *bitsPtr,
	}
	n, err := wav.WriteRaw(f, md, ab.Data)
	if err != nil {
		log.Fatal("could not write WAV", "error", err.Error())
	}
	log.Info("recording written", "path", *outPtr, "bytes", n)
}

// open finds and prepares an ALSA recording device by name, or the first
// recording device when name is empty.
func open(log logging.Logger, name string, rate, channels, bits int) (*yalsa.Device, error) {
	cards, err := yalsa.OpenCards()
	if err != nil {
		return nil, err
	}
	defer yalsa.CloseCards(cards)

	var dev *yalsa.Device
	for _, card := range cards {
		devices, err := card.Devices()
		if err != nil {
			return nil, err
		}
		for _, d := range devices {
			if d.Type != yalsa.PCM || !d.Record {
				continue
			}
			if d.Title == name || name == "" {
				dev = d
				break
			}
		}
	}
	if dev == nil {
		return nil, errors.New("no audio source found")
	}
	log.Debug("found audio source", "source", dev.Title)

	if err := dev.Open(); err != nil {
		return nil, err
	}
	if _, err := dev.NegotiateChannels(channels); err != nil {
		return nil, err
	}
	if _, err := dev.NegotiateRate(rate); err != nil {
		return nil, err
	}

	var sf yalsa.FormatType
	switch bits {
	case 16:
		sf = yalsa.S16_LE
	case 32:
		sf = yalsa.S32_LE
	default:
		return nil, errors.New("unsupported sample bits")
	}
	if _, err := dev.NegotiateFormat(sf); err != nil {
		return nil, err
	}

	// Either 8192 or 16384 bytes is a reasonable ALSA buffer size.
	if _, err := dev.NegotiateBufferSize(8192, 16384); err != nil {
		return nil, err
	}
	if err := dev.Prepare(); err != nil {
		return nil, err
	}
	log.Debug("successfully negotiated ALSA params")
	return dev, nil
}
