package lfo

import (
	"math"
	"testing"
)

func TestSineShape(t *testing.T) {
	l := New(100, 1, 2, Sine) // 100 samples per cycle
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = l.Next()
	}
	if math.Abs(samples[0]) > 1e-9 {
		t.Errorf("sine at phase 0: got %f, want 0", samples[0])
	}
	if math.Abs(samples[25]-2) > 0.01 {
		t.Errorf("sine at phase 0.25: got %f, want 2", samples[25])
	}
	if math.Abs(samples[75]+2) > 0.01 {
		t.Errorf("sine at phase 0.75: got %f, want -2", samples[75])
	}
}

func TestTriangleShape(t *testing.T) {
	l := New(100, 1, 1, Triangle)
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = l.Next()
	}
	if math.Abs(samples[0]+1) > 0.05 {
		t.Errorf("triangle at phase 0: got %f, want -1", samples[0])
	}
	if math.Abs(samples[25]) > 0.05 {
		t.Errorf("triangle at phase 0.25: got %f, want ~0", samples[25])
	}
	if math.Abs(samples[50]-1) > 0.05 {
		t.Errorf("triangle at phase 0.5: got %f, want 1", samples[50])
	}
}

func TestSquareAndSaw(t *testing.T) {
	sq := New(100, 1, 2, Square)
	if v := sq.Next(); v != 2 {
		t.Errorf("square first half: got %f, want 2", v)
	}
	for i := 1; i < 50; i++ {
		sq.Next()
	}
	if v := sq.Next(); v != -2 {
		t.Errorf("square second half: got %f, want -2", v)
	}

	saw := New(100, 1, 1, Saw)
	if v := saw.Next(); math.Abs(v-1) > 1e-9 {
		t.Errorf("saw at phase 0: got %f, want 1", v)
	}
}

func TestZeroRateOrDepthIsSilent(t *testing.T) {
	for _, l := range []*LFO{New(48000, 0, 1, Sine), New(48000, 5, 0, Sine), New(0, 5, 1, Sine)} {
		if l.Active() {
			t.Fatal("expected inactive LFO")
		}
		for i := 0; i < 10; i++ {
			if v := l.Next(); v != 0 {
				t.Fatalf("inactive LFO returned %f", v)
			}
		}
	}
}

func TestReset(t *testing.T) {
	l := New(100, 1, 1, Saw)
	first := l.Next()
	for i := 0; i < 37; i++ {
		l.Next()
	}
	l.Reset()
	if v := l.Next(); v != first {
		t.Fatalf("after Reset got %f, want %f", v, first)
	}
}
