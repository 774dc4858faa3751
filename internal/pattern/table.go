package pattern

var table = map[Mood]map[Role]Entry{
	MoodHappy: {
		RoleSynth: {"C4", "E4", "G4", "E4"},
		RoleBass:  {"C2", Rest, "G2", Rest},
		RoleDrums: {"C1", Rest, "G1", "C1"},
		RolePad:   {"C3", "E3", "G3", "E3"},
		RoleLead:  {"G4", "C5", "E5", "G5"},
	},
	MoodMelancholic: {
		RoleSynth: {"C4", "Eb4", "G4", "Eb4"},
		RoleBass:  {"C2", Rest, "G2", Rest},
		RoleDrums: {"C1", Rest, Rest, "C1"},
		RolePad:   {"C3", "Eb3", "G3", "Eb3"},
		RoleLead:  {"G4", "C5", "Eb5", "G5"},
	},
	MoodEnergetic: {
		RoleSynth: {"C4", "D4", "E4", "G4", "E4", "D4"},
		RoleBass:  {"C2", Rest, "G2", Rest, "E2", Rest},
		RoleDrums: {"C1", "G1", "C1", "G1", "C1", "G1"},
		RolePad:   {"C3", "G3", "E3", "G3"},
		RoleLead:  {"C5", "D5", "E5", "G5", "E5", "D5"},
	},
	MoodChill: {
		RoleSynth: {"C4", "E4", "G4", Rest},
		RoleBass:  {"C2", Rest, Rest, Rest},
		RoleDrums: {"C1", Rest, "G1", Rest},
		RolePad:   {"C3", Rest, "G3", Rest},
		RoleLead:  {"G4", Rest, "E5", Rest},
	},
	MoodIntense: {
		RoleSynth: {"C4", "E4", "G4", "C5", "G4", "E4"},
		RoleBass:  {"C1", "C1", "G1", "G1"},
		RoleDrums: {"C1", "G1", "C1", "G1"},
		RolePad:   {"C3", "G3", "C4", "G3"},
		RoleLead:  {"C5", "G5", "C6", "G5"},
	},
}

// Lookup returns a copy of the entry for (mood, role). A role missing from the
// mood's table plays the mood's synth entry. Unknown moods yield nil.
func Lookup(mood Mood, role Role) Entry {
	rows, ok := table[mood]
	if !ok {
		return nil
	}
	e, ok := rows[role]
	if !ok {
		e = rows[RoleSynth]
	}
	out := make(Entry, len(e))
	copy(out, e)
	return out
}
