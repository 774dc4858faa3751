// Package transport is the sample-accurate musical clock. It is advanced one
// frame at a time by the audio graph and fires scheduled step callbacks.
package transport

import (
	"math"
	"sync"

	"github.com/cbegin/loopify-go/internal/pattern"
)

// Subdivision is a note value expressed as divisions of a whole note.
type Subdivision int

const (
	Quarter   Subdivision = 4
	Eighth    Subdivision = 8
	Sixteenth Subdivision = 16
)

const DefaultBPM = 120

// Callback receives the absolute frame, the step index within the entry and
// the step itself.
type Callback func(at int64, index int, step pattern.Step)

// SequenceInfo describes one scheduled sequence.
type SequenceInfo struct {
	ID          int
	Steps       []pattern.Step
	Subdivision Subdivision
}

type sequence struct {
	id    int
	steps []pattern.Step
	sub   Subdivision
	fn    Callback
	next  int64 // index of the next step to fire, counted from start
}

type firing struct {
	fn    Callback
	at    int64
	index int
	step  pattern.Step
}

// Transport is safe for concurrent use. Callbacks run on the goroutine that
// calls Advance, outside the transport lock.
type Transport struct {
	mu         sync.Mutex
	sampleRate int
	bpm        float64
	running    bool
	position   int64
	seqs       []*sequence
	nextID     int
}

func New(sampleRate int) *Transport {
	return &Transport{sampleRate: sampleRate, bpm: DefaultBPM}
}

func (t *Transport) SampleRate() int { return t.sampleRate }

// SetBPM replaces the tempo. Non-positive values are ignored.
func (t *Transport) SetBPM(bpm float64) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bpm = bpm
	for _, s := range t.seqs {
		s.next = t.firstStepAfter(s, t.position)
	}
}

func (t *Transport) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

// Frames returns the length of one subdivision at the current tempo.
func (t *Transport) Frames(sub Subdivision) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(math.Round(t.stepLen(sub)))
}

func (t *Transport) stepLen(sub Subdivision) float64 {
	if sub <= 0 {
		sub = Quarter
	}
	quarter := 60.0 / t.bpm * float64(t.sampleRate)
	return quarter * 4 / float64(sub)
}

// Schedule binds a looping step sequence starting at transport time 0 and
// returns its id. Empty sequences are accepted and never fire.
func (t *Transport) Schedule(steps []pattern.Step, sub Subdivision, fn Callback) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	s := &sequence{
		id:    id,
		steps: append([]pattern.Step(nil), steps...),
		sub:   sub,
		fn:    fn,
	}
	s.next = t.firstStepAfter(s, t.position)
	t.seqs = append(t.seqs, s)
	return id
}

// firstStepAfter is the first step index whose frame is at or after pos.
func (t *Transport) firstStepAfter(s *sequence, pos int64) int64 {
	step := t.stepLen(s.sub)
	k := int64(math.Ceil(float64(pos) / step))
	for k > 0 && int64(math.Round(float64(k-1)*step)) >= pos {
		k--
	}
	for int64(math.Round(float64(k)*step)) < pos {
		k++
	}
	return k
}

// Start begins advancing from the current position.
func (t *Transport) Start() {
	t.mu.Lock()
	t.running = true
	t.mu.Unlock()
}

// Stop halts the clock and rewinds it to 0. Scheduled sequences are kept.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.position = 0
	for _, s := range t.seqs {
		s.next = 0
	}
}

// Cancel removes every scheduled sequence.
func (t *Transport) Cancel() {
	t.mu.Lock()
	t.seqs = nil
	t.mu.Unlock()
}

func (t *Transport) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Position is the number of frames advanced since the last Stop.
func (t *Transport) Position() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

func (t *Transport) Sequences() []SequenceInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SequenceInfo, 0, len(t.seqs))
	for _, s := range t.seqs {
		out = append(out, SequenceInfo{
			ID:          s.id,
			Steps:       append([]pattern.Step(nil), s.steps...),
			Subdivision: s.sub,
		})
	}
	return out
}

// Advance fires every step due at the current frame, then moves the clock one
// frame forward. It does nothing while stopped.
func (t *Transport) Advance() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	pos := t.position
	var due []firing
	for _, s := range t.seqs {
		if len(s.steps) == 0 {
			continue
		}
		step := t.stepLen(s.sub)
		for int64(math.Round(float64(s.next)*step)) <= pos {
			idx := int(s.next % int64(len(s.steps)))
			due = append(due, firing{fn: s.fn, at: pos, index: idx, step: s.steps[idx]})
			s.next++
		}
	}
	t.position++
	t.mu.Unlock()

	for _, f := range due {
		if f.fn != nil {
			f.fn(f.at, f.index, f.step)
		}
	}
}
