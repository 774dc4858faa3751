package pattern

import (
	"reflect"
	"testing"
)

func TestLookupFallsBackToSynth(t *testing.T) {
	for _, mood := range Moods {
		want := Lookup(mood, RoleSynth)
		got := Lookup(mood, Role("theremin"))
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: fallback = %v, want %v", mood, got, want)
		}
	}
}

func TestLookupEntries(t *testing.T) {
	cases := []struct {
		mood Mood
		role Role
		want Entry
	}{
		{MoodHappy, RoleBass, Entry{"C2", Rest, "G2", Rest}},
		{MoodHappy, RoleDrums, Entry{"C1", Rest, "G1", "C1"}},
		{MoodChill, RoleLead, Entry{"G4", Rest, "E5", Rest}},
		{MoodEnergetic, RoleSynth, Entry{"C4", "D4", "E4", "G4", "E4", "D4"}},
		{MoodIntense, RoleBass, Entry{"C1", "C1", "G1", "G1"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.mood)+"/"+string(tc.role), func(t *testing.T) {
			if got := Lookup(tc.mood, tc.role); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Lookup = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	e := Lookup(MoodHappy, RoleSynth)
	e[0] = "B7"
	if got := Lookup(MoodHappy, RoleSynth)[0]; got != "C4" {
		t.Fatalf("table mutated through lookup result: %q", got)
	}
}

func TestLookupUnknownMood(t *testing.T) {
	if got := Lookup(Mood("grumpy"), RoleSynth); len(got) != 0 {
		t.Fatalf("unknown mood = %v, want empty", got)
	}
}

func TestEveryStepParses(t *testing.T) {
	for mood, rows := range table {
		for role, entry := range rows {
			if n := len(entry); n != 4 && n != 6 {
				t.Errorf("%s/%s has %d steps", mood, role, n)
			}
			for i, s := range entry {
				if s.IsRest() {
					continue
				}
				if s.Note() < 0 {
					t.Errorf("%s/%s step %d: %q does not parse", mood, role, i, s)
				}
			}
		}
	}
}

func TestParseNote(t *testing.T) {
	cases := map[string]int{"C4": 60, "A4": 69, "Eb4": 63, "C1": 24, "G1": 31, "F#2": 42, "C6": 84}
	for label, want := range cases {
		got, err := ParseNote(label)
		if err != nil {
			t.Fatalf("ParseNote(%q): %v", label, err)
		}
		if got != want {
			t.Errorf("ParseNote(%q) = %d, want %d", label, got, want)
		}
	}
	for _, bad := range []string{"", "H4", "C", "Cx", "G99"} {
		if _, err := ParseNote(bad); err == nil {
			t.Errorf("ParseNote(%q) should fail", bad)
		}
	}
	if got := NoteName(61); got != "C#4" {
		t.Errorf("NoteName(61) = %q", got)
	}
}

func TestParseRoleAndMood(t *testing.T) {
	if r, err := ParseRole(" Drums "); err != nil || r != RoleDrums {
		t.Fatalf("ParseRole = %q, %v", r, err)
	}
	if _, err := ParseRole("kazoo"); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if m, err := ParseMood("CHILL"); err != nil || m != MoodChill {
		t.Fatalf("ParseMood = %q, %v", m, err)
	}
	if _, err := ParseMood("grumpy"); err == nil {
		t.Fatal("expected error for unknown mood")
	}
}
