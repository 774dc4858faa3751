package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

type rampSource struct{ n float32 }

func (s *rampSource) Process(dst []float32) {
	for i := range dst {
		s.n += 0.25
		dst[i] = s.n
	}
}

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	p := make([]byte, 16)
	n, err := r.Read(p)
	if err != nil || n != 16 {
		t.Fatalf("Read = %d, %v", n, err)
	}
	for i, want := range []float32{0.25, 0.5, 0.75, 1} {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if got != want {
			t.Errorf("sample %d = %f, want %f", i, got, want)
		}
	}
}

func TestStreamReaderIgnoresPartialFrames(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	n, err := r.Read(make([]byte, 7))
	if n != 0 || err != nil {
		t.Fatalf("Read = %d, %v, want 0, nil", n, err)
	}
	n, _ = r.Read(make([]byte, 12))
	if n != 8 {
		t.Fatalf("Read = %d, want one whole frame", n)
	}
}
