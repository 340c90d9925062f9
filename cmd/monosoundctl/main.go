// Command monosoundctl drives the MonoSound engine from a terminal:
// either play a file as a looping (or one-shot) stream through the
// default audio device, or run a file once through the filter chain
// and write the result to disk. Grounded on
// tools/livekit-publisher/main.go's flag style: explicit, descriptive
// flags with literal defaults, .env loaded best-effort before
// flag.Parse so config.Load sees its environment variables.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/absoluteAquarian/monosound/internal/config"
	"github.com/absoluteAquarian/monosound/internal/engine"
)

var (
	flagPath       string
	flagLoop       bool
	flagOneShot    bool
	flagOutPath    string
	flagStreamName string
	flagVolume     float64
	flagLogEvery   time.Duration
)

func init() {
	flag.StringVar(&flagPath, "path", "", "Path to the audio file to play or filter (wav/mp3/ogg/xnb)")
	flag.BoolVar(&flagLoop, "loop", false, "Loop the stream (ignored with -oneshot)")
	flag.BoolVar(&flagOneShot, "oneshot", false, "Decode once, filter once, write PCM to -out instead of playing")
	flag.StringVar(&flagOutPath, "out", "", "Output path for -oneshot's raw filtered 16-bit PCM (required with -oneshot)")
	flag.StringVar(&flagStreamName, "name", "ctl", "Stream registry basename")
	flag.Float64Var(&flagVolume, "volume", 1.0, "Linear volume applied to a playing stream (1.0 = unchanged)")
	flag.DurationVar(&flagLogEvery, "log-every", 2*time.Second, "Progress log interval while playing (0=disable)")
}

func main() {
	_ = godotenv.Load()
	flag.Parse()

	if err := run(); err != nil {
		log.Fatalf("monosoundctl: %v", err)
	}
}

func run() error {
	if flagPath == "" {
		return errors.New("-path is required")
	}

	cfg := config.Load()
	e, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}
	defer e.Close()

	if flagOneShot {
		return runOneShot(e)
	}
	return runStream(e)
}

func runOneShot(e *engine.Engine) error {
	if flagOutPath == "" {
		return errors.New("-out is required with -oneshot")
	}

	pcm, err := e.PlayOneShot(flagPath, nil)
	if err != nil {
		return fmt.Errorf("filtering %s: %w", flagPath, err)
	}

	if err := os.WriteFile(flagOutPath, pcm, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", flagOutPath, err)
	}
	log.Printf("wrote %d bytes of filtered PCM to %s", len(pcm), flagOutPath)
	return nil
}

func runStream(e *engine.Engine) error {
	pkg, name, err := e.LoadStream(flagStreamName, flagPath, flagLoop)
	if err != nil {
		return fmt.Errorf("loading %s: %w", flagPath, err)
	}
	pkg.SetVolume(flagVolume)
	log.Printf("playing %q (stream %q, loop=%v, volume=%.2f)", flagPath, name, flagLoop, flagVolume)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var ticker *time.Ticker
	var tickCh <-chan time.Time
	if flagLogEvery > 0 {
		ticker = time.NewTicker(flagLogEvery)
		defer ticker.Stop()
		tickCh = ticker.C
	}

	for {
		select {
		case <-sigCh:
			log.Printf("interrupted, stopping %q", name)
			return pkg.Stop()
		case <-tickCh:
			log.Printf("progress: stream=%q playTime=%s", name, pkg.PlayTime())
		default:
			if pkg.FinishedStreaming() {
				log.Printf("finished: stream=%q playTime=%s", name, pkg.PlayTime())
				return nil
			}
			time.Sleep(50 * time.Millisecond)
		}
	}
}
