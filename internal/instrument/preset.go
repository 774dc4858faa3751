package instrument

import (
	"github.com/cbegin/loopify-go/internal/effects"
	"github.com/cbegin/loopify-go/internal/pattern"
	"github.com/cbegin/loopify-go/internal/synth"
)

// Preset is the fixed construction recipe for one role.
type Preset struct {
	Params            synth.Params
	TriggersWithPitch bool
	Chorus            bool
}

// PresetFor returns the preset of role. Unknown roles get the synth preset.
func PresetFor(role pattern.Role) Preset {
	p := synth.DefaultParams()
	switch role {
	case pattern.RoleBass:
		p.AttackSec, p.DecaySec, p.SustainLvl, p.ReleaseSec = 0.2, 0.2, 0.5, 1.2
		p.MasterGain = 0.4
		return Preset{Params: p, TriggersWithPitch: true}
	case pattern.RolePad:
		p.Voices = 6
		p.AttackSec, p.DecaySec, p.SustainLvl, p.ReleaseSec = 0.5, 0.5, 0.8, 2
		p.MasterGain = 0.18
		return Preset{Params: p, TriggersWithPitch: true, Chorus: true}
	case pattern.RoleLead:
		p.Waveform = synth.WaveSquare
		p.SustainLvl = 0.9
		p.MasterGain = 0.15
		p.LPFCutoff = 3000
		p.VibratoHz, p.VibratoDepth = 5, 0.1
		return Preset{Params: p, TriggersWithPitch: true}
	case pattern.RoleDrums:
		p.Waveform = synth.WaveNoise
		p.AttackSec, p.DecaySec, p.SustainLvl, p.ReleaseSec = 0.005, 0.1, 0, 0.05
		p.MasterGain = 0.35
		return Preset{Params: p}
	default:
		return Preset{Params: p, TriggersWithPitch: true}
	}
}

func newInsert(p Preset, sampleRate int) effects.Effector {
	if !p.Chorus {
		return nil
	}
	return effects.NewChorus(sampleRate, 18, 4, 0.8, 0.35)
}
