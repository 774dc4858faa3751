package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource fills dst with interleaved stereo float32 samples.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to the float32 little-endian stream
// ebiten's F32 players read.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// ErrNotReady is returned when the audio device did not become ready before
// the activation deadline.
var ErrNotReady = errors.New("audio device not ready")

const readyPoll = 10 * time.Millisecond

// Output is the single stereo sink. It is activated once and then streams
// its source until closed.
type Output struct {
	sampleRate int

	mu     sync.Mutex
	player *ebitaudio.Player
	reader *StreamReader
}

func NewOutput(sampleRate int) *Output {
	return &Output{sampleRate: sampleRate}
}

// Activate starts streaming src. It waits for the device to become ready
// until ctx is done. Activating an active output is a no-op.
func (o *Output) Activate(ctx context.Context, src SampleSource) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player != nil {
		return nil
	}
	actx, err := sharedAudioContext(o.sampleRate)
	if err != nil {
		return err
	}
	for !actx.IsReady() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrNotReady, ctx.Err())
		case <-time.After(readyPoll):
		}
	}
	reader := NewStreamReader(src)
	pl, err := actx.NewPlayerF32(reader)
	if err != nil {
		return err
	}
	pl.SetBufferSize(40 * time.Millisecond)
	pl.Play()
	o.player, o.reader = pl, reader
	return nil
}

func (o *Output) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.player != nil
}

// Close stops the stream. The output may be activated again.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return nil
	}
	o.player.Pause()
	err := o.player.Close()
	o.player = nil
	if cerr := o.reader.Close(); err == nil {
		err = cerr
	}
	o.reader = nil
	return err
}
