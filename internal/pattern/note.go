package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ParseNote converts a pitch label ("C4", "Eb3", "F#2") to a MIDI note number
// with C4 = 60.
func ParseNote(label string) (int, error) {
	s := strings.TrimSpace(label)
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid pitch %q", label)
	}
	base, ok := semitones[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("invalid pitch %q", label)
	}
	rest := s[1:]
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			base++
		} else {
			base--
		}
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in pitch %q", label)
	}
	n := (octave+1)*12 + base
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("pitch %q out of MIDI range", label)
	}
	return n, nil
}

// NoteName formats a MIDI note number using sharps, e.g. 61 -> "C#4".
func NoteName(note int) string {
	if note < 0 {
		return ""
	}
	return sharpNames[note%12] + strconv.Itoa(note/12-1)
}
