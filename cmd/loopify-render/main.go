package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cbegin/loopify-go"
	"github.com/cbegin/loopify-go/internal/effects"
	"github.com/cbegin/loopify-go/internal/pattern"
	"github.com/cbegin/loopify-go/internal/share"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		sampleRate  = flag.Int("sample-rate", 48000, "output sample rate")
		instruments = flag.String("instruments", "synth", "comma-separated instruments: synth,bass,drums,pad,lead")
		mood        = flag.String("mood", string(loopify.DefaultMood), "mood: happy|melancholic|energetic|chill|intense")
		tempo       = flag.Int("tempo", loopify.DefaultTempo, "tempo in BPM (60-200)")
		fx          = flag.String("effects", "", "enabled effects with optional intensity, e.g. reverb=0.7,delay")
		link        = flag.String("link", "", "shared loop link; overrides the other loop flags")
		seconds     = flag.Float64("seconds", 8, "seconds of audio to render")
		wavPath     = flag.String("out", "", "write a float32 WAV file")
		midiPath    = flag.String("midi", "", "write a standard MIDI file")
		loops       = flag.Int("loops", 4, "pattern repetitions in the MIDI file")
		logLevel    = flag.String("log-level", "info", "log level: debug|info|warn|error")
	)
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.WithError(err).Fatal("bad -log-level")
	}
	logrus.SetLevel(level)

	st, err := stateFromFlags(*instruments, *mood, *tempo, *fx)
	if *link != "" {
		st, err = stateFromLink(*link)
	}
	if err != nil {
		logrus.WithError(err).Fatal("invalid loop")
	}
	if *wavPath == "" && *midiPath == "" {
		logrus.Fatal("nothing to do: pass -out and/or -midi")
	}
	if err := checkRender(*sampleRate, *seconds, *loops); err != nil {
		logrus.WithError(err).Fatal("invalid render options")
	}
	log := logrus.WithFields(logrus.Fields{
		"instruments": st.ActiveInstruments,
		"mood":        st.Mood,
		"tempo":       st.Tempo,
		"effects":     st.Effects.Enabled(),
	})

	if *wavPath != "" {
		samples, err := loopify.RenderLoop(st, *sampleRate, *seconds)
		if err != nil {
			log.WithError(err).Fatal("render failed")
		}
		if err := os.WriteFile(*wavPath, loopify.EncodeWAVFloat32LE(samples, *sampleRate, 2), 0o644); err != nil {
			log.WithError(err).Fatal("writing wav")
		}
		log.WithField("path", *wavPath).Info("wrote wav")
	}
	if *midiPath != "" {
		if err := loopify.WriteMIDIFile(*midiPath, st, *loops); err != nil {
			log.WithError(err).Fatal("writing midi")
		}
		log.WithField("path", *midiPath).Info("wrote midi")
	}
}

func stateFromLink(raw string) (loopify.State, error) {
	p, err := share.Decode(raw)
	if err != nil {
		return loopify.State{}, err
	}
	return loopify.State{
		ActiveInstruments: p.ActiveInstruments,
		Mood:              p.Mood,
		Tempo:             p.Tempo,
		Effects:           p.Effects,
	}, nil
}

func stateFromFlags(instruments, mood string, tempo int, fx string) (loopify.State, error) {
	st := loopify.State{Tempo: tempo, Effects: effects.DefaultConfig()}
	if tempo < loopify.MinTempo || tempo > loopify.MaxTempo {
		return st, fmt.Errorf("invalid -tempo %d (expected %d-%d)", tempo, loopify.MinTempo, loopify.MaxTempo)
	}
	m, err := pattern.ParseMood(strings.TrimSpace(mood))
	if err != nil {
		return st, err
	}
	st.Mood = m
	seen := map[pattern.Role]bool{}
	for _, name := range splitList(instruments) {
		r, err := pattern.ParseRole(name)
		if err != nil {
			return st, err
		}
		if !seen[r] {
			seen[r] = true
			st.ActiveInstruments = append(st.ActiveInstruments, r)
		}
	}
	if len(st.ActiveInstruments) == 0 {
		return st, loopify.ErrNoInstruments
	}
	for _, item := range splitList(fx) {
		name, value, hasValue := strings.Cut(item, "=")
		kind, err := effects.ParseKind(name)
		if err != nil {
			return st, err
		}
		s := st.Effects[kind]
		s.Enabled = true
		if hasValue {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil || v < 0 || v > 1 {
				return st, fmt.Errorf("invalid intensity %q for %s (expected 0-1)", value, kind)
			}
			s.Intensity = v
		}
		st.Effects[kind] = s
	}
	return st, nil
}

func checkRender(sampleRate int, seconds float64, loops int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid -sample-rate %d", sampleRate)
	}
	if math.IsNaN(seconds) || seconds <= 0 || seconds > loopify.MaxRenderSeconds {
		return fmt.Errorf("invalid -seconds %v (expected 0-%d)", seconds, loopify.MaxRenderSeconds)
	}
	if loops <= 0 {
		return fmt.Errorf("invalid -loops %d", loops)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
