package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/cbegin/loopify-go"
	"github.com/cbegin/loopify-go/internal/pattern"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0f")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff"))
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#444"))
	playheadStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f55"))
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

const tempoStep = 5

type model struct {
	app     *loopify.App
	events  <-chan loopify.Event
	notices <-chan string

	effect   int // selected effect row
	steps    map[loopify.Role]int
	starting bool
	status   string
	isError  bool
	modal    string
	quitting bool
}

type eventMsg loopify.Event
type noticeMsg string
type startedMsg struct{ err error }
type sharedMsg struct{ err error }

func newModel(app *loopify.App, notices <-chan string) model {
	return model{
		app:     app,
		events:  app.Watch(),
		notices: notices,
		steps:   map[loopify.Role]int{},
		status:  "ready",
	}
}

func listenForEvents(ch <-chan loopify.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func listenForNotices(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(msg)
	}
}

func startPlayback(app *loopify.App) tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: app.StartPlayback(context.Background())}
	}
}

func share(app *loopify.App) tea.Cmd {
	return func() tea.Msg {
		_, err := app.Share(context.Background())
		return sharedMsg{err: err}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(listenForEvents(m.events), listenForNotices(m.notices))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.modal != "" {
			switch msg.String() {
			case "enter", "esc", " ":
				m.modal = ""
			case "ctrl+c":
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKey(msg.String())

	case eventMsg:
		ev := loopify.Event(msg)
		switch ev.Kind {
		case loopify.EventStep:
			m.steps[ev.Role] = ev.Index
		case loopify.EventMIDINote:
			m.setStatus(fmt.Sprintf("midi %s from %s", pattern.NoteName(ev.Note), ev.Device))
		}
		return m, listenForEvents(m.events)

	case noticeMsg:
		m.modal = string(msg)
		return m, listenForNotices(m.notices)

	case startedMsg:
		m.starting = false
		if msg.err != nil {
			m.setError(m.app.State().LastError)
			if m.status == "" {
				m.setError(msg.err.Error())
			}
			return m, nil
		}
		m.setStatus("playing")

	case sharedMsg:
		if msg.err != nil {
			m.setError("share failed: " + msg.err.Error())
		}
	}
	return m, nil
}

func (m model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.app.StopPlayback()
		return m, tea.Quit

	case "1", "2", "3", "4", "5":
		role := loopify.Roles[int(key[0]-'1')]
		m.app.ToggleInstrument(role)
		m.setStatus(role.Label() + " toggled")

	case "m", "M":
		d := 1
		if key == "M" {
			d = len(loopify.Moods) - 1
		}
		mood := loopify.Moods[(moodIndex(m.app.State().Mood)+d)%len(loopify.Moods)]
		m.app.SetMood(mood)
		m.setStatus("mood " + mood.Label())

	case "+", "=":
		m.nudgeTempo(tempoStep)

	case "-", "_":
		m.nudgeTempo(-tempoStep)

	case "j", "down":
		m.effect = (m.effect + 1) % len(loopify.EffectKinds)

	case "k", "up":
		m.effect = (m.effect + len(loopify.EffectKinds) - 1) % len(loopify.EffectKinds)

	case "e", "enter":
		kind := loopify.EffectKinds[m.effect]
		on := !m.app.State().Effects[kind].Enabled
		m.app.SetEffectEnabled(kind, on)

	case "h", "left":
		m.nudgeIntensity(-0.05)

	case "l", "right":
		m.nudgeIntensity(0.05)

	case "i":
		m.cycleMIDI()

	case "s":
		return m, share(m.app)

	case " ", "p":
		if m.starting {
			return m, nil
		}
		if m.app.State().IsPlaying {
			m.app.StopPlayback()
			m.steps = map[loopify.Role]int{}
			m.setStatus("stopped")
			return m, nil
		}
		if !m.app.CanPlay() {
			m.setError("select an instrument first")
			return m, nil
		}
		m.starting = true
		m.setStatus("starting")
		return m, startPlayback(m.app)
	}
	return m, nil
}

func (m *model) nudgeTempo(d int) {
	bpm := m.app.State().Tempo + d
	bpm = max(loopify.MinTempo, min(loopify.MaxTempo, bpm))
	m.app.SetTempo(bpm)
	m.setStatus(fmt.Sprintf("tempo %d", bpm))
}

func (m *model) nudgeIntensity(d float64) {
	kind := loopify.EffectKinds[m.effect]
	m.app.SetEffectIntensity(kind, m.app.State().Effects[kind].Intensity+d)
}

func (m *model) cycleMIDI() {
	devs := m.app.MIDIDevices()
	if len(devs) == 0 {
		m.setStatus("no midi inputs")
		return
	}
	cur := m.app.State().SelectedMIDIDevice
	next := devs[0].ID
	for i, d := range devs {
		if d.ID == cur {
			next = ""
			if i+1 < len(devs) {
				next = devs[i+1].ID
			}
		}
	}
	m.app.SelectMIDIDevice(next)
	if next == "" {
		m.setStatus("midi off")
		return
	}
	m.setStatus("midi " + next)
}

func (m *model) setStatus(s string) { m.status, m.isError = s, false }

func (m *model) setError(s string) { m.status, m.isError = s, true }

func moodIndex(mood loopify.Mood) int {
	for i, md := range loopify.Moods {
		if md == mood {
			return i
		}
	}
	return 0
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	st := m.app.State()
	active := map[loopify.Role]bool{}
	for _, r := range st.ActiveInstruments {
		active[r] = true
	}

	playState := "stop"
	if st.IsPlaying {
		playState = "play"
	} else if m.starting {
		playState = "...."
	}
	header := headerStyle.Render(fmt.Sprintf("loopify  %s  %3dbpm  %s", playState, st.Tempo, st.Mood.Label()))

	var inst []string
	for i, r := range loopify.Roles {
		style := dimStyle
		if active[r] {
			style = activeStyle
		}
		inst = append(inst, style.Render(fmt.Sprintf("%d:%s", i+1, r.Label())))
	}

	var fx []string
	for i, kind := range loopify.EffectKinds {
		s := st.Effects[kind]
		style := dimStyle
		if s.Enabled {
			style = activeStyle
		}
		if i == m.effect {
			style = style.Inherit(cursorStyle)
		}
		fx = append(fx, style.Render(fmt.Sprintf("%-10s %s %3d%%", kind.Label(), bar(s.Intensity, 20), int(s.Intensity*100+0.5))))
	}

	var grid []string
	for _, role := range st.ActiveInstruments {
		var cells []string
		cur, ok := m.steps[role]
		for j, step := range pattern.Lookup(st.Mood, role) {
			label := fmt.Sprintf("%-4s", stepLabel(step))
			style := activeStyle
			if step.IsRest() {
				style = dimStyle
			}
			if st.IsPlaying && ok && j == cur {
				style = playheadStyle
			}
			cells = append(cells, style.Render(label))
		}
		grid = append(grid, fmt.Sprintf("%-6s %s", role.Label(), strings.Join(cells, " ")))
	}
	if len(grid) == 0 {
		grid = append(grid, dimStyle.Render("pick an instrument"))
	}

	midiName := "off"
	if st.SelectedMIDIDevice != "" {
		midiName = st.SelectedMIDIDevice
	}
	status := statusStyle.Render(fmt.Sprintf("midi:%s  %s", midiName, m.status))
	if m.isError {
		status = errorStyle.Render(m.status)
	}

	help := dimStyle.Render("1-5:instrument  m/M:mood  +/-:tempo  j/k:effect  e:toggle  h/l:intensity  i:midi  s:share  space:play  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(strings.Join(inst, "  "))
	out.WriteString("\n\n")
	out.WriteString(strings.Join(fx, "\n"))
	out.WriteString("\n\n")
	out.WriteString(strings.Join(grid, "\n"))
	out.WriteString("\n\n")
	out.WriteString(status)
	out.WriteString("\n")
	out.WriteString(help)
	if m.modal != "" {
		out.WriteString("\n\n")
		out.WriteString(modalStyle.Render(m.modal + "\n\n" + dimStyle.Render("enter: ok")))
	}
	return out.String()
}

func stepLabel(s pattern.Step) string {
	if s.IsRest() {
		return "·"
	}
	return s.String()
}

func bar(frac float64, width int) string {
	n := int(frac*float64(width) + 0.5)
	n = max(0, min(width, n))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}
