package loopify

import (
	"github.com/cbegin/loopify-go/internal/graph"
	"github.com/cbegin/loopify-go/internal/instrument"
	"github.com/cbegin/loopify-go/internal/pattern"
	"github.com/cbegin/loopify-go/internal/playback"
	"github.com/cbegin/loopify-go/internal/router"
	"github.com/cbegin/loopify-go/internal/transport"
)

// rig is the audio side of a session: instruments, transport, effect
// routing and the graph that renders them.
type rig struct {
	sampleRate int
	registry   *instrument.Registry
	transport  *transport.Transport
	graph      *graph.Graph
	router     *router.Router
	controller *playback.Controller
}

func newRig(sampleRate int, onStep playback.StepFunc) (*rig, error) {
	reg := instrument.CreateAll(sampleRate)
	tr := transport.New(sampleRate)
	g := graph.New(sampleRate, tr, reg.Handles())
	rt, err := router.New(sampleRate, g)
	if err != nil {
		reg.DisposeAll()
		return nil, err
	}
	r := &rig{
		sampleRate: sampleRate,
		registry:   reg,
		transport:  tr,
		graph:      g,
		router:     rt,
	}
	r.controller = playback.New(tr, r.voice, onStep)
	return r, nil
}

// graphVoice plays a role through the graph's trigger queue.
type graphVoice struct {
	g       *graph.Graph
	role    pattern.Role
	pitched bool
}

func (v graphVoice) TriggersWithPitch() bool { return v.pitched }

func (v graphVoice) TriggerAttackRelease(note int, frames int) {
	v.g.Trigger(v.role, note, frames)
}

func (r *rig) voice(role pattern.Role) (playback.Voice, bool) {
	pitched, ok := r.graph.TriggersWithPitch(role)
	if !ok {
		return nil, false
	}
	return graphVoice{g: r.graph, role: role, pitched: pitched}, true
}

func (r *rig) applyEffects(cfg EffectConfig) {
	r.router.Apply(cfg, r.registry.Roles())
}

// play sounds note on every role using the pattern trigger policy.
func (r *rig) play(roles []pattern.Role, note int) {
	for _, role := range roles {
		if v, ok := r.voice(role); ok {
			playback.Play(r.transport, v, note)
		}
	}
}

func (r *rig) dispose() {
	r.controller.Stop()
	r.graph.Do(r.registry.DisposeAll)
	r.router.Dispose()
}
