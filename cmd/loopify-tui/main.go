package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cbegin/loopify-go"
	"github.com/cbegin/loopify-go/internal/config"
	"github.com/cbegin/loopify-go/internal/midi"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	var (
		link   = flag.String("link", "", "shared loop link to restore on start")
		noMIDI = flag.Bool("no-midi", false, "disable MIDI input")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	// The terminal belongs to the UI; logs go to a file next to the preferences.
	logger := logrus.New()
	logger.SetLevel(cfg.Level())
	logger.SetOutput(io.Discard)
	if f, err := openLogFile(); err == nil {
		defer f.Close()
		logger.SetOutput(f)
	}

	notices := make(chan string, 1)
	opts := []loopify.Option{
		loopify.WithLogger(logger),
		loopify.WithShareOrigin(cfg.ShareOrigin),
		loopify.WithActivationTimeout(cfg.ActivateWait.Duration),
		loopify.WithNotifier(func(msg string) {
			select {
			case notices <- msg:
			default:
			}
		}),
	}
	if !*noMIDI {
		if drv, err := rtmididrv.New(); err != nil {
			logger.WithError(err).Warn("MIDI not available")
		} else if pd, err := midi.NewPortDriver(drv); err == nil {
			opts = append(opts, loopify.WithMIDIDriver(pd))
		}
	}

	app, err := loopify.New(cfg.SampleRate, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()
	app.SetMasterVolume(cfg.Volume)
	for i, gain := range cfg.EQ {
		app.SetEQBand(i, gain)
	}
	if *link != "" {
		app.Restore(*link)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.RunMIDI(ctx)

	p := tea.NewProgram(newModel(app, notices), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func openLogFile() (*os.File, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}
