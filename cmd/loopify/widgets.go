package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const (
	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale
)

var (
	bgColor        = color.RGBA{192, 192, 192, 255}
	panelColor     = color.RGBA{192, 192, 192, 255}
	borderColor    = color.RGBA{128, 128, 128, 255}
	activeColor    = color.RGBA{0, 0, 128, 255}
	disabledColor  = color.RGBA{160, 160, 160, 255}
	stepOnColor    = color.RGBA{255, 200, 0, 255}
	stepRestColor  = color.RGBA{48, 48, 64, 255}
	stepNoteColor  = color.RGBA{0, 96, 160, 255}
	modalShade     = color.RGBA{0, 0, 0, 140}
	scopeLineColor = color.RGBA{0, 220, 120, 255}

	// 3D bevel colors for old-school embossed look.
	bevelLight  = color.RGBA{255, 255, 255, 255}
	bevelDarker = color.RGBA{64, 64, 64, 255}

	// Sunken panel / edit area interior.
	sunkenBgColor = color.RGBA{24, 24, 32, 255}

	// Slider fill accent.
	sliderFillColor = color.RGBA{0, 0, 128, 255}
)

// ui holds the drawing helpers shared by every panel.
type ui struct {
	textCache map[string]*ebiten.Image
}

func fillRect(screen *ebiten.Image, rect image.Rectangle, c color.Color) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), c)
}

func (u *ui) drawPanel(screen *ebiten.Image, rect image.Rectangle) {
	fillRect(screen, rect, panelColor)
	drawBorder(screen, rect)
}

func (u *ui) drawSunkenPanel(screen *ebiten.Image, rect image.Rectangle) {
	fillRect(screen, rect, sunkenBgColor)
	drawSunkenBorder(screen, rect)
}

// drawButton draws a raised button, or a sunken one when pressed. Disabled
// buttons are drawn flat.
func (u *ui) drawButton(screen *ebiten.Image, rect image.Rectangle, label string, pressed, enabled bool) {
	switch {
	case !enabled:
		fillRect(screen, rect, disabledColor)
		drawSunkenBorder(screen, rect)
	case pressed:
		fillRect(screen, rect, activeColor)
		drawSunkenBorder(screen, rect)
	default:
		fillRect(screen, rect, panelColor)
		drawBorder(screen, rect)
	}
	labelW := len([]rune(label)) * charW
	x := rect.Min.X + (rect.Dx()-labelW)/2
	y := rect.Min.Y + (rect.Dy()-lineH)/2
	u.drawText(screen, label, x, y)
}

// slider is a horizontal track after a fixed-width label.
type slider struct {
	rect   image.Rectangle
	labelW int
}

func (s slider) track() (x, y, w int) {
	return s.rect.Min.X + s.labelW, s.rect.Min.Y + s.rect.Dy()/2 - 4, s.rect.Dx() - s.labelW - 16
}

// value maps a mouse x onto the track as 0..1.
func (s slider) value(mx int) float64 {
	x, _, w := s.track()
	if w <= 0 {
		return 0
	}
	return clamp(float64(mx-x)/float64(w), 0, 1)
}

func (u *ui) drawSlider(screen *ebiten.Image, s slider, label string, frac float64) {
	u.drawPanel(screen, s.rect)
	u.drawText(screen, label, s.rect.Min.X+8, s.rect.Min.Y+8)

	trackX, trackY, trackW := s.track()
	if trackW < 20 {
		return
	}
	// Sunken track groove.
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), float64(trackW), 8, bevelDarker)
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), float64(trackW-1), 1, borderColor)
	ebitenutil.DrawRect(screen, float64(trackX), float64(trackY), 1, 7, borderColor)
	fillW := int(float64(trackW) * clamp(frac, 0, 1))
	if fillW > 2 {
		ebitenutil.DrawRect(screen, float64(trackX+1), float64(trackY+1), float64(fillW-1), 6, sliderFillColor)
	}
	// Raised knob.
	knobX := trackX + fillW - 5
	if knobX < trackX-5 {
		knobX = trackX - 5
	}
	if knobX > trackX+trackW-5 {
		knobX = trackX + trackW - 5
	}
	knob := image.Rect(knobX, trackY-4, knobX+10, trackY+12)
	fillRect(screen, knob, panelColor)
	drawBorder(screen, knob)
}

// drawBorder draws a raised 3D bevel (highlight top/left, shadow bottom/right).
func drawBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, bevelLight)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, bevelLight)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+h-2, w-3, 1, borderColor)
	ebitenutil.DrawRect(screen, x+w-2, y+1, 1, h-3, borderColor)
}

// drawSunkenBorder draws a sunken 3D bevel (shadow top/left, highlight bottom/right).
func drawSunkenBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, borderColor)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, borderColor)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelLight)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelLight)
	ebitenutil.DrawRect(screen, x+1, y+1, w-3, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+2, 1, h-4, bevelDarker)
}

func (u *ui) drawText(screen *ebiten.Image, msg string, x int, y int) {
	if msg == "" {
		return
	}
	img := u.textCache[msg]
	if img == nil {
		w := max(1, len([]rune(msg))*7)
		img = ebiten.NewImage(w, 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(u.textCache) > 3000 {
			u.textCache = make(map[string]*ebiten.Image, 1024)
		}
		u.textCache[msg] = img
	}
	// Embossed shadow.
	opS := &ebiten.DrawImageOptions{}
	opS.GeoM.Scale(textScale, textScale)
	opS.GeoM.Translate(float64(x+2), float64(y+2))
	opS.ColorScale.Scale(0, 0, 0, 1)
	screen.DrawImage(img, opS)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(img, op)
}

func shortenEnd(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return string(r[:max(0, maxChars)])
	}
	return string(r[:maxChars-3]) + "..."
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}
