package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/cbegin/loopify-go"
	"github.com/cbegin/loopify-go/internal/pattern"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := g.layoutRects()
	st := g.app.State()

	g.drawText(screen, "Instruments", l.instruments[0].Min.X, l.instruments[0].Min.Y-lineH-2)
	active := make(map[loopify.Role]bool, len(st.ActiveInstruments))
	for _, r := range st.ActiveInstruments {
		active[r] = true
	}
	for i, r := range l.instruments {
		role := loopify.Roles[i]
		g.drawButton(screen, r, role.Label(), active[role], true)
	}

	g.drawText(screen, "Mood", l.moods[0].Min.X, l.moods[0].Min.Y-lineH-2)
	for i, r := range l.moods {
		mood := loopify.Moods[i]
		g.drawButton(screen, r, mood.Label(), st.Mood == mood, true)
	}

	tempoFrac := float64(st.Tempo-loopify.MinTempo) / float64(loopify.MaxTempo-loopify.MinTempo)
	g.drawSlider(screen, l.tempo, fmt.Sprintf("Tempo %d", st.Tempo), tempoFrac)

	for i, kind := range loopify.EffectKinds {
		s := st.Effects[kind]
		g.drawButton(screen, l.effects[i], kind.Label(), s.Enabled, true)
		g.drawSlider(screen, l.intensity[i], fmt.Sprintf("%3d%%", int(s.Intensity*100+0.5)), s.Intensity)
	}

	g.drawPattern(screen, l.pattern, st)
	g.drawEQ(screen, l.eq)
	g.drawSunkenPanel(screen, l.scope)
	g.scope.draw(screen, l.scope)

	playLabel := "Play"
	if st.IsPlaying {
		playLabel = "Stop"
	}
	if g.starting {
		playLabel = "..."
	}
	g.drawButton(screen, l.play, playLabel, st.IsPlaying, st.IsPlaying || g.app.CanPlay())
	g.drawButton(screen, l.share, "Share", false, true)
	midiLabel := "MIDI: off"
	if st.SelectedMIDIDevice != "" {
		midiLabel = "MIDI: " + st.SelectedMIDIDevice
	}
	g.drawButton(screen, l.midi, shortenEnd(midiLabel, (l.midi.Dx()-16)/charW), st.SelectedMIDIDevice != "", true)
	g.drawSlider(screen, l.volume, "Volume", g.app.MasterVolume())

	g.drawStatus(screen, l.status)
	if g.modal != "" {
		g.drawModal(screen, l)
	}
}

// drawPattern shows one row of steps per active instrument, with the step
// that last fired highlighted.
func (g *game) drawPattern(screen *ebiten.Image, rect image.Rectangle, st loopify.State) {
	g.drawSunkenPanel(screen, rect)
	if len(st.ActiveInstruments) == 0 {
		g.drawText(screen, "Pick an instrument", rect.Min.X+12, rect.Min.Y+12)
		return
	}
	labelW := 7 * charW
	rowH := (rect.Dy() - 8) / len(st.ActiveInstruments)
	if rowH > lineH+12 {
		rowH = lineH + 12
	}
	for i, role := range st.ActiveInstruments {
		y := rect.Min.Y + 4 + i*rowH
		g.drawText(screen, role.Label(), rect.Min.X+8, y+(rowH-lineH)/2)
		entry := pattern.Lookup(st.Mood, role)
		if len(entry) == 0 {
			continue
		}
		cellW := (rect.Dx() - labelW - 16) / len(entry)
		cur, ok := g.steps[role]
		for j, step := range entry {
			x := rect.Min.X + labelW + 8 + j*cellW
			cell := image.Rect(x+2, y+2, x+cellW-2, y+rowH-2)
			var c color.Color = stepNoteColor
			if step.IsRest() {
				c = stepRestColor
			}
			if st.IsPlaying && ok && cur == j {
				c = stepOnColor
			}
			fillRect(screen, cell, c)
			if label := step.String(); label != "" && cellW >= (len(label)+1)*charW {
				g.drawText(screen, label, x+6, y+(rowH-lineH)/2)
			}
		}
	}
}

func (g *game) drawEQ(screen *ebiten.Image, rect image.Rectangle) {
	g.drawSunkenPanel(screen, rect)
	pad := 8
	bandW := (rect.Dx() - pad*2) / len(eqBandLabels)
	innerY := rect.Min.Y + 4
	innerH := rect.Dy() - 12 - lineH
	if bandW <= 0 || innerH <= 0 {
		return
	}
	unityY := innerY + innerH/2
	ebitenutil.DrawRect(screen, float64(rect.Min.X+pad), float64(unityY), float64(rect.Dx()-pad*2), 1, borderColor)
	for i, label := range eqBandLabels {
		x := rect.Min.X + pad + i*bandW
		gain := clamp(float64(g.app.EQBand(i)), 0, 2)
		top := innerY + int(float64(innerH)*(1-gain/2))
		if top < unityY {
			fillRect(screen, image.Rect(x+6, top, x+bandW-6, unityY), scopeLineColor)
		} else {
			fillRect(screen, image.Rect(x+6, unityY, x+bandW-6, top+1), stepNoteColor)
		}
		g.drawText(screen, label, x+(bandW-len(label)*charW)/2, rect.Max.Y-lineH-4)
	}
}

func (g *game) drawStatus(screen *ebiten.Image, rect image.Rectangle) {
	g.drawSunkenPanel(screen, rect)
	msg := g.status
	if g.statusErr {
		msg = "! " + msg
	}
	bpm, pos := g.app.Transport()
	right := fmt.Sprintf("%.0f BPM  %6.1fs", bpm, float64(pos)/float64(g.cfg.SampleRate))
	maxChars := (rect.Dx()-24)/charW - len(right) - 2
	g.drawText(screen, shortenEnd(msg, maxChars), rect.Min.X+8, rect.Min.Y+(rect.Dy()-lineH)/2)
	g.drawText(screen, right, rect.Max.X-8-len(right)*charW, rect.Min.Y+(rect.Dy()-lineH)/2)
}

func (g *game) drawModal(screen *ebiten.Image, l layout) {
	fillRect(screen, screen.Bounds(), modalShade)
	g.drawPanel(screen, l.modal)
	maxChars := (l.modal.Dx() - 32) / charW
	msg := shortenEnd(g.modal, maxChars)
	g.drawText(screen, msg, l.modal.Min.X+(l.modal.Dx()-len(msg)*charW)/2, l.modal.Min.Y+32)
	g.drawButton(screen, l.modalOK, "OK", false, true)
}
