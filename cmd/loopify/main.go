package main

import (
	"context"
	"flag"
	"fmt"
	"image"

	"github.com/cbegin/loopify-go"
	"github.com/cbegin/loopify-go/internal/config"
	"github.com/cbegin/loopify-go/internal/midi"
	"github.com/cbegin/loopify-go/internal/pattern"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

const (
	windowW    = 1100
	windowH    = 720
	minWindowW = 1040
	minWindowH = 680
)

type dragTarget int

const (
	dragNone dragTarget = iota
	dragTempo
	dragVolume
	dragEffect
	dragEQ
)

type game struct {
	ui
	app    *loopify.App
	cfg    *config.Config
	log    logrus.FieldLogger
	events <-chan loopify.Event
	scope  *scope
	cancel context.CancelFunc

	steps    map[loopify.Role]int // last fired step per role
	dragging dragTarget
	dragKind loopify.EffectKind
	dragBand int

	starting  bool
	startDone chan error

	status    string
	statusErr bool
	modal     string

	viewW int
	viewH int
}

type layout struct {
	instruments []image.Rectangle
	moods       []image.Rectangle
	tempo       slider
	effects     []image.Rectangle
	intensity   []slider
	pattern     image.Rectangle
	eq          image.Rectangle
	scope       image.Rectangle
	play, share image.Rectangle
	midi        image.Rectangle
	volume      slider
	status      image.Rectangle
	modal       image.Rectangle
	modalOK     image.Rectangle
}

func (g *game) layoutRects() layout {
	w, h := max(g.viewW, minWindowW), max(g.viewH, minWindowH)
	pad := 20
	rowH := 44
	gap := 12
	var l layout

	y := pad + lineH + 4
	btnW := 150
	for i := range loopify.Roles {
		x := pad + i*(btnW+gap)
		l.instruments = append(l.instruments, image.Rect(x, y, x+btnW, y+rowH))
	}
	y += rowH + lineH + 16
	for i := range loopify.Moods {
		x := pad + i*(btnW+gap)
		l.moods = append(l.moods, image.Rect(x, y, x+btnW, y+rowH))
	}
	y += rowH + gap
	l.tempo = slider{rect: image.Rect(pad, y, pad+btnW*2+gap*2+btnW, y+rowH), labelW: 180}

	y += rowH + gap
	fxTop := y
	for i := range loopify.EffectKinds {
		ry := fxTop + i*(rowH+8)
		l.effects = append(l.effects, image.Rect(pad, ry, pad+200, ry+rowH))
		l.intensity = append(l.intensity, slider{rect: image.Rect(pad+212, ry, pad+520, ry+rowH), labelW: 90})
	}
	fxBottom := fxTop + len(loopify.EffectKinds)*(rowH+8) - 8
	l.pattern = image.Rect(pad+532, fxTop, w-pad, fxBottom)

	statusH := 40
	statusTop := h - pad - statusH
	controlsTop := statusTop - 8 - rowH
	l.status = image.Rect(pad, statusTop, w-pad, statusTop+statusH)
	l.play = image.Rect(pad, controlsTop, pad+130, controlsTop+rowH)
	l.share = image.Rect(pad+142, controlsTop, pad+272, controlsTop+rowH)
	l.midi = image.Rect(pad+284, controlsTop, pad+600, controlsTop+rowH)
	l.volume = slider{rect: image.Rect(pad+612, controlsTop, w-pad, controlsTop+rowH), labelW: 130}

	eqTop := fxBottom + gap
	eqBottom := controlsTop - gap
	l.eq = image.Rect(pad, eqTop, pad+280, eqBottom)
	l.scope = image.Rect(pad+292, eqTop, w-pad, eqBottom)

	mw, mh := 520, 160
	l.modal = image.Rect((w-mw)/2, (h-mh)/2, (w+mw)/2, (h+mh)/2)
	l.modalOK = image.Rect(l.modal.Min.X+mw/2-60, l.modal.Max.Y-60, l.modal.Min.X+mw/2+60, l.modal.Max.Y-16)
	return l
}

func newGame(app *loopify.App, cfg *config.Config, log logrus.FieldLogger, sc *scope, cancel context.CancelFunc) *game {
	return &game{
		ui:       ui{textCache: make(map[string]*ebiten.Image, 1024)},
		app:      app,
		cfg:      cfg,
		log:      log,
		events:   app.Watch(),
		scope:    sc,
		cancel:   cancel,
		steps:    map[loopify.Role]int{},
		dragBand: -1,
		status:   "Ready",
		viewW:    windowW,
		viewH:    windowH,
	}
}

// notify shows a modal message. It is the share notifier and runs on the
// ebiten goroutine.
func (g *game) notify(msg string) { g.modal = msg }

func (g *game) Update() error {
	g.pollEvents()
	g.pollStart()
	if g.modal != "" {
		g.handleModal()
		return nil
	}
	g.handleMouse()
	g.handleKeys()
	return nil
}

func (g *game) pollEvents() {
	for {
		select {
		case ev, ok := <-g.events:
			if !ok {
				return
			}
			switch ev.Kind {
			case loopify.EventStep:
				g.steps[ev.Role] = ev.Index
			case loopify.EventMIDINote:
				g.setStatus(fmt.Sprintf("MIDI %s from %s", pattern.NoteName(ev.Note), ev.Device))
			}
		default:
			return
		}
	}
}

func (g *game) pollStart() {
	if !g.starting {
		return
	}
	select {
	case err := <-g.startDone:
		g.starting = false
		if err != nil {
			if msg := g.app.State().LastError; msg != "" {
				g.setError(msg)
			} else {
				g.setError(err.Error())
			}
			return
		}
		g.setStatus("Playing")
	default:
	}
}

func (g *game) handleModal() {
	l := g.layoutRects()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if pointInRect(mx, my, l.modalOK) {
			g.modal = ""
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.modal = ""
	}
}

func (g *game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.togglePlayback()
	}
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		for i, r := range l.instruments {
			if pointInRect(mx, my, r) {
				role := loopify.Roles[i]
				g.app.ToggleInstrument(role)
				g.setStatus(role.Label() + " toggled")
				return
			}
		}
		for i, r := range l.moods {
			if pointInRect(mx, my, r) {
				g.app.SetMood(loopify.Moods[i])
				g.setStatus("Mood: " + loopify.Moods[i].Label())
				return
			}
		}
		for i, r := range l.effects {
			if pointInRect(mx, my, r) {
				kind := loopify.EffectKinds[i]
				on := !g.app.State().Effects[kind].Enabled
				g.app.SetEffectEnabled(kind, on)
				g.setStatus(fmt.Sprintf("%s %s", kind.Label(), onOff(on)))
				return
			}
		}
		for i, s := range l.intensity {
			if pointInRect(mx, my, s.rect) {
				g.dragging, g.dragKind = dragEffect, loopify.EffectKinds[i]
				break
			}
		}
		switch {
		case pointInRect(mx, my, l.tempo.rect):
			g.dragging = dragTempo
		case pointInRect(mx, my, l.volume.rect):
			g.dragging = dragVolume
		case pointInRect(mx, my, l.eq):
			if band := eqBandFromMouse(mx, l.eq); band >= 0 {
				g.dragging, g.dragBand = dragEQ, band
			}
		case pointInRect(mx, my, l.play):
			g.togglePlayback()
			return
		case pointInRect(mx, my, l.share):
			g.share()
			return
		case pointInRect(mx, my, l.midi):
			g.cycleMIDIDevice()
			return
		}
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.dragging = dragNone
		return
	}
	switch g.dragging {
	case dragTempo:
		bpm := loopify.MinTempo + int(l.tempo.value(mx)*float64(loopify.MaxTempo-loopify.MinTempo)+0.5)
		if bpm != g.app.State().Tempo {
			g.app.SetTempo(bpm)
			g.setStatus(fmt.Sprintf("Tempo: %d BPM", bpm))
		}
	case dragVolume:
		v := l.volume.value(mx)
		g.app.SetMasterVolume(v)
		g.setStatus(fmt.Sprintf("Volume: %d%%", int(v*100+0.5)))
	case dragEffect:
		for i, kind := range loopify.EffectKinds {
			if kind == g.dragKind {
				v := l.intensity[i].value(mx)
				g.app.SetEffectIntensity(kind, v)
				g.setStatus(fmt.Sprintf("%s: %d%%", kind.Label(), int(v*100+0.5)))
			}
		}
	case dragEQ:
		g.setEQFromMouse(my, l.eq)
	}
}

func (g *game) togglePlayback() {
	if g.starting {
		return
	}
	if g.app.State().IsPlaying {
		g.app.StopPlayback()
		g.steps = map[loopify.Role]int{}
		g.setStatus("Stopped")
		return
	}
	if !g.app.CanPlay() {
		g.setError("Select an instrument first")
		return
	}
	// Activation may wait on the audio device, so it runs off the game loop.
	g.starting = true
	g.startDone = make(chan error, 1)
	g.setStatus("Starting...")
	go func(done chan<- error) {
		done <- g.app.StartPlayback(context.Background())
	}(g.startDone)
}

func (g *game) share() {
	if _, err := g.app.Share(context.Background()); err != nil {
		g.log.WithError(err).Debug("share failed")
		return
	}
	if g.modal == "" {
		g.setStatus("Shared")
	}
}

// cycleMIDIDevice selects the next input, then none, then starts over.
func (g *game) cycleMIDIDevice() {
	devs := g.app.MIDIDevices()
	if len(devs) == 0 {
		g.setStatus("No MIDI inputs")
		return
	}
	cur := g.app.State().SelectedMIDIDevice
	next := devs[0].ID
	for i, d := range devs {
		if d.ID == cur {
			next = ""
			if i+1 < len(devs) {
				next = devs[i+1].ID
			}
		}
	}
	g.app.SelectMIDIDevice(next)
	if next == "" {
		g.setStatus("MIDI off")
		return
	}
	g.setStatus("MIDI: " + next)
}

var eqBandLabels = [5]string{"Lo", "LoM", "Mid", "HiM", "Hi"}

func eqBandFromMouse(mx int, rect image.Rectangle) int {
	pad := 8
	bandW := (rect.Dx() - pad*2) / len(eqBandLabels)
	if bandW <= 0 {
		return -1
	}
	idx := (mx - rect.Min.X - pad) / bandW
	if idx < 0 || idx >= len(eqBandLabels) {
		return -1
	}
	return idx
}

func (g *game) setEQFromMouse(my int, rect image.Rectangle) {
	band := g.dragBand
	if band < 0 || band >= len(eqBandLabels) {
		return
	}
	innerY := rect.Min.Y + 4
	innerH := rect.Dy() - 12
	if innerH <= 0 {
		return
	}
	// Map y position to gain: top = 2.0, bottom = 0.0.
	gain := (1.0 - clamp(float64(my-innerY)/float64(innerH), 0, 1)) * 2.0
	g.app.SetEQBand(band, float32(gain))
	g.setStatus(fmt.Sprintf("EQ %s: %.1f", eqBandLabels[band], gain))
}

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
}

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	g.viewW = max(outsideW, minWindowW)
	g.viewH = max(outsideH, minWindowH)
	return g.viewW, g.viewH
}

func (g *game) Close() {
	g.cfg.Volume = g.app.MasterVolume()
	for i := range g.cfg.EQ {
		g.cfg.EQ[i] = g.app.EQBand(i)
	}
	g.cfg.MIDIDevice = ""
	selected := g.app.State().SelectedMIDIDevice
	for _, d := range g.app.MIDIDevices() {
		if d.ID == selected {
			g.cfg.MIDIDevice = d.Name
		}
	}
	g.cancel()
	if err := g.app.Close(); err != nil {
		g.log.WithError(err).Warn("close failed")
	}
	if err := g.cfg.Save(); err != nil {
		g.log.WithError(err).Warn("saving preferences failed")
	}
}

func main() {
	var (
		link       = flag.String("link", "", "shared loop link to restore on start")
		sampleRate = flag.Int("sample-rate", 0, "output sample rate (default from preferences)")
		logLevel   = flag.String("log-level", "", "log level: debug|info|warn|error")
		noMIDI     = flag.Bool("no-midi", false, "disable MIDI input")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Warn("preferences unreadable, using defaults")
		cfg = config.DefaultConfig()
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *sampleRate > 0 {
		cfg.SampleRate = *sampleRate
	}
	logger := logrus.StandardLogger()
	logger.SetLevel(cfg.Level())
	log := logger.WithField("component", "gui")

	sc := newScope()
	ctx, cancel := context.WithCancel(context.Background())
	var g *game
	opts := []loopify.Option{
		loopify.WithLogger(logger),
		loopify.WithShareOrigin(cfg.ShareOrigin),
		loopify.WithSampleTap(sc.Tap),
		loopify.WithActivationTimeout(cfg.ActivateWait.Duration),
		loopify.WithNotifier(func(msg string) { g.notify(msg) }),
	}
	if !*noMIDI {
		if drv, err := openMIDI(); err != nil {
			log.WithError(err).Warn("MIDI not available")
		} else {
			opts = append(opts, loopify.WithMIDIDriver(drv))
		}
	}
	app, err := loopify.New(cfg.SampleRate, opts...)
	if err != nil {
		log.WithError(err).Fatal("starting loopify")
	}
	g = newGame(app, cfg, log, sc, cancel)
	defer g.Close()

	app.SetMasterVolume(cfg.Volume)
	for i, gain := range cfg.EQ {
		app.SetEQBand(i, gain)
	}
	if cfg.MIDIDevice != "" {
		for _, d := range app.MIDIDevices() {
			if d.Name == cfg.MIDIDevice {
				app.SelectMIDIDevice(d.ID)
			}
		}
	}
	if *link != "" && !app.Restore(*link) {
		g.setError("Shared link could not be read; starting fresh")
	}
	go app.RunMIDI(ctx)

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("Loopify")
	if err := ebiten.RunGame(g); err != nil {
		g.Close()
		log.WithError(err).Fatal("ui failed")
	}
}

func openMIDI() (midi.Driver, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return midi.NewPortDriver(drv)
}
