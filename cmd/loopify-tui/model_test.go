package main

import (
	"context"
	"strings"
	"testing"

	"github.com/cbegin/loopify-go"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"
)

type nopOutput struct{}

func (nopOutput) Activate(context.Context, loopify.SampleSource) error { return nil }
func (nopOutput) Close() error                                        { return nil }

func newTestModel(t *testing.T) model {
	t.Helper()
	logger, _ := test.NewNullLogger()
	app, err := loopify.New(48000, loopify.WithOutput(nopOutput{}), loopify.WithLogger(logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return newModel(app, make(chan string))
}

func press(t *testing.T, m model, key string) (model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestNumberKeysToggleInstruments(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "2")
	st := m.app.State()
	if len(st.ActiveInstruments) != 1 || st.ActiveInstruments[0] != loopify.RoleBass {
		t.Fatalf("active = %v, want [bass]", st.ActiveInstruments)
	}
	m, _ = press(t, m, "2")
	if len(m.app.State().ActiveInstruments) != 0 {
		t.Fatal("second press should deactivate bass")
	}
}

func TestPlayNeedsAnInstrument(t *testing.T) {
	m := newTestModel(t)
	m, cmd := press(t, m, " ")
	if cmd != nil || !m.isError {
		t.Fatalf("expected an error status and no command, got %q", m.status)
	}
}

func TestPlayStartsAsynchronously(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "3")
	m, cmd := press(t, m, " ")
	if cmd == nil || !m.starting {
		t.Fatal("expected a start command")
	}
	next, _ := m.Update(cmd())
	m = next.(model)
	if m.starting || !m.app.State().IsPlaying {
		t.Fatalf("playback not started: status %q", m.status)
	}
	m, _ = press(t, m, " ")
	if m.app.State().IsPlaying {
		t.Fatal("second press should stop")
	}
}

func TestTempoKeysClamp(t *testing.T) {
	m := newTestModel(t)
	m.app.SetTempo(loopify.MaxTempo)
	m, _ = press(t, m, "+")
	if got := m.app.State().Tempo; got != loopify.MaxTempo {
		t.Fatalf("tempo = %d, want %d", got, loopify.MaxTempo)
	}
	m, _ = press(t, m, "-")
	if got := m.app.State().Tempo; got != loopify.MaxTempo-tempoStep {
		t.Fatalf("tempo = %d", got)
	}
}

func TestEffectKeys(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "j")
	kind := loopify.EffectKinds[1]
	m, _ = press(t, m, "e")
	if !m.app.State().Effects[kind].Enabled {
		t.Fatalf("%s should be enabled", kind)
	}
	m, _ = press(t, m, "l")
	if got := m.app.State().Effects[kind].Intensity; got < 0.54 || got > 0.56 {
		t.Fatalf("intensity = %v, want 0.55", got)
	}
}

func TestNoticeOpensModal(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(noticeMsg("Link copied to clipboard"))
	m = next.(model)
	if !strings.Contains(m.View(), "Link copied to clipboard") {
		t.Fatal("modal text missing from view")
	}
	m, _ = press(t, m, "1")
	if len(m.app.State().ActiveInstruments) != 0 {
		t.Fatal("keys should not reach the session while the modal is open")
	}
	m, _ = press(t, m, "enter")
	if m.modal != "" {
		t.Fatal("enter should dismiss the modal")
	}
}

func TestMoodCycles(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "m")
	if got := m.app.State().Mood; got != loopify.Moods[1] {
		t.Fatalf("mood = %s, want %s", got, loopify.Moods[1])
	}
	m, _ = press(t, m, "M")
	if got := m.app.State().Mood; got != loopify.Moods[0] {
		t.Fatalf("mood = %s, want %s", got, loopify.Moods[0])
	}
}
