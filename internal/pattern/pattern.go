package pattern

import (
	"fmt"
	"strings"
)

// Role identifies an instrument slot. It selects both a synth preset and a
// row of the pattern table.
type Role string

const (
	RoleSynth Role = "synth"
	RoleBass  Role = "bass"
	RoleDrums Role = "drums"
	RolePad   Role = "pad"
	RoleLead  Role = "lead"
)

// Roles lists every role in display order.
var Roles = []Role{RoleSynth, RoleBass, RoleDrums, RolePad, RoleLead}

// Mood selects which note sequence each role plays.
type Mood string

const (
	MoodHappy       Mood = "happy"
	MoodMelancholic Mood = "melancholic"
	MoodEnergetic   Mood = "energetic"
	MoodChill       Mood = "chill"
	MoodIntense     Mood = "intense"
)

// Moods lists every mood in display order.
var Moods = []Mood{MoodHappy, MoodMelancholic, MoodEnergetic, MoodChill, MoodIntense}

// Step is one slot of an entry: a pitch label such as "Eb4", or Rest.
type Step string

// Rest is the silent step.
const Rest Step = ""

func (s Step) IsRest() bool { return s == Rest }

// Note returns the MIDI note number of the step. Rests return -1.
func (s Step) Note() int {
	if s.IsRest() {
		return -1
	}
	n, err := ParseNote(string(s))
	if err != nil {
		return -1
	}
	return n
}

func (s Step) String() string {
	if s.IsRest() {
		return "-"
	}
	return string(s)
}

// Entry is the ordered step sequence for one (mood, role) pair.
type Entry []Step

func (e Entry) String() string {
	parts := make([]string, len(e))
	for i, s := range e {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (r Role) Label() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

func (m Mood) Label() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(name string) (Role, error) {
	want := Role(strings.ToLower(strings.TrimSpace(name)))
	for _, r := range Roles {
		if r == want {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown instrument %q", name)
}

// ParseMood resolves a mood name case-insensitively.
func ParseMood(name string) (Mood, error) {
	want := Mood(strings.ToLower(strings.TrimSpace(name)))
	for _, m := range Moods {
		if m == want {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood %q", name)
}
