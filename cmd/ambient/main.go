package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	ambient "github.com/cbegin/ambient-go"
	"github.com/cbegin/ambient-go/internal/store"
	"golang.org/x/term"
)

func main() {
	var (
		sampleRate  = flag.Int("sample-rate", ambient.DefaultSampleRate, "output sample rate")
		backend     = flag.String("backend", ambient.BackendEbiten, "audio output: ebiten|oto|null|offline")
		seed        = flag.Int64("seed", 0, "random seed (0 = time based)")
		storePath   = flag.String("store", "", "JSON file for presets and volume (default: in memory)")
		prefix      = flag.String("prefix", ambient.DefaultKeyPrefix, "key prefix inside the store")
		preset      = flag.String("preset", "", "preset to load at startup")
		timbre      = flag.String("timbre", "", "pad timbre: sine|triangle|square|sawtooth")
		filter      = flag.Int("filter", 0, "pad filter brightness in Hz (200-8000)")
		chordPeriod = flag.Int("chord-period", 0, "chord period in ms (4000-30000)")
		volume      = flag.Int("volume", -1, "volume 0-100 (-1 = persisted value)")
		heartbeat   = flag.Bool("heartbeat", false, "enable the heartbeat layer")
		arp         = flag.Bool("arp", false, "enable the arpeggio layer")
		renderPath  = flag.String("render", "", "render to a WAV file instead of playing")
		seconds     = flag.Float64("seconds", 60, "length of -render output")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := initLogger(*verbose)

	opts := []ambient.Option{
		ambient.WithSampleRate(*sampleRate),
		ambient.WithBackend(*backend),
		ambient.WithLogger(logger),
		ambient.WithKeyPrefix(*prefix),
	}
	if *renderPath != "" {
		opts = append(opts, ambient.WithBackend(ambient.BackendOffline))
	}
	if *seed != 0 {
		opts = append(opts, ambient.WithSeed(*seed))
	}
	if *storePath != "" {
		fs, err := store.OpenFile(*storePath)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, ambient.WithStore(fs))
	}

	eng, err := ambient.New(opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()
	if err := eng.RestoreErr(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if *preset != "" {
		if err := eng.LoadPreset(*preset); err != nil {
			log.Fatal(err)
		}
	}
	if err := applyFlags(eng, *timbre, *filter, *chordPeriod, *volume, *heartbeat, *arp); err != nil {
		log.Fatal(err)
	}

	if *renderPath != "" {
		if err := renderFile(eng, *renderPath, *seconds); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s (%.1fs)\n", *renderPath, *seconds)
		return
	}

	if err := eng.Start(); err != nil {
		log.Fatal(err)
	}
	go logEvents(logger, eng.Watch())

	if term.IsTerminal(int(os.Stdin.Fd())) {
		if err := runKeys(eng); err != nil {
			log.Fatal(err)
		}
		return
	}
	fmt.Println("playing; press Ctrl-C to stop")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	eng.Stop()
}

// initLogger configures slog on stderr and routes the standard logger
// through it.
func initLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func applyFlags(eng *ambient.Engine, timbre string, filter, chordPeriod, volume int, heartbeat, arp bool) error {
	if timbre != "" {
		if err := eng.SetOscillatorTimbre(timbre); err != nil {
			return fmt.Errorf("invalid -timbre %q (expected sine|triangle|square|sawtooth)", timbre)
		}
	}
	if filter > 0 {
		eng.SetFilterBrightness(float64(filter))
	}
	if chordPeriod > 0 {
		eng.SetChordPeriod(chordPeriod)
	}
	if volume >= 0 {
		if err := eng.SetVolumePercent(volume); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
	st := eng.Settings()
	if heartbeat && !st.HeartbeatEnabled {
		eng.ToggleHeartbeat()
	}
	if arp && !st.ArpeggioEnabled {
		eng.ToggleArpeggiator()
	}
	return nil
}

func renderFile(eng *ambient.Engine, path string, seconds float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := eng.Start(); err != nil {
		f.Close()
		return err
	}
	if err := eng.RenderWAV(f, seconds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func logEvents(logger *slog.Logger, events <-chan ambient.Event) {
	for ev := range events {
		switch ev.Kind {
		case ambient.EventDeviceStatus:
			if ev.Err != nil {
				logger.Warn("device", "err", ev.Err)
			}
		case ambient.EventChordChanged:
			logger.Debug("chord", "notes", ev.Chord, "t", ev.Time)
		default:
			logger.Debug(ev.Kind.String(), "t", ev.Time)
		}
	}
}
