package main

import (
	"image"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const scopeRingLen = 8192

// scope keeps the most recent mono output for the waveform display.
type scope struct {
	mu       sync.Mutex
	ring     []float32
	writePos int
	peak     float64
}

func newScope() *scope {
	return &scope{ring: make([]float32, scopeRingLen)}
}

// Tap is called from the audio thread. Keep it minimal: just copy into ring.
func (s *scope) Tap(samples []float32) {
	s.mu.Lock()
	for i := 0; i+1 < len(samples); i += 2 {
		s.ring[s.writePos] = (samples[i] + samples[i+1]) * 0.5
		s.writePos = (s.writePos + 1) % scopeRingLen
	}
	s.mu.Unlock()
}

func (s *scope) snapshot(n int) []float32 {
	if n > scopeRingLen {
		n = scopeRingLen
	}
	out := make([]float32, n)
	s.mu.Lock()
	start := (s.writePos - n + scopeRingLen) % scopeRingLen
	for i := range out {
		out[i] = s.ring[(start+i)%scopeRingLen]
	}
	s.mu.Unlock()
	return out
}

// findZeroCrossing returns the first rising zero crossing so the trace
// holds still between frames.
func findZeroCrossing(samples []float32, searchLen int) int {
	for i := 1; i < searchLen && i < len(samples); i++ {
		if samples[i-1] <= 0 && samples[i] > 0 {
			return i
		}
	}
	return 0
}

func (s *scope) draw(screen *ebiten.Image, rect image.Rectangle) {
	w := rect.Dx() - 8
	h := rect.Dy() - 8
	if w < 4 || h < 4 {
		return
	}
	samples := s.snapshot(w * 3)
	off := findZeroCrossing(samples, w*2)
	peak := 0.0
	for _, v := range samples {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	// Slow decay keeps quiet tails visible.
	s.peak = math.Max(peak, s.peak*0.95)
	gain := 1.0
	if s.peak > 0.001 {
		gain = 0.9 / s.peak
	}
	mid := float64(rect.Min.Y + 4 + h/2)
	prevY := mid
	for x := 0; x < w && off+x < len(samples); x++ {
		y := mid - float64(samples[off+x])*gain*float64(h/2)
		top, bottom := math.Min(prevY, y), math.Max(prevY, y)
		ebitenutil.DrawRect(screen, float64(rect.Min.X+4+x), top, 1, math.Max(1, bottom-top), scopeLineColor)
		prevY = y
	}
}
