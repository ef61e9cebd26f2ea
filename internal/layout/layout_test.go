package layout

import (
	"testing"

	"github.com/yoans/micro-tonal-interface/internal/tuning"
)

func TestChromaticStepsRowMajor(t *testing.T) {
	keys := Generate(Chromatic, tuning.EDO12, 261.63, 4, 12)

	if len(keys) != 48 {
		t.Fatalf("expected 48 keys, got %d", len(keys))
	}

	// Steps run -12..35 in row-major order.
	for i, k := range keys {
		want := i - 12
		if k.Step != want {
			t.Errorf("key %d: step %d, want %d", i, k.Step, want)
		}
		if k.Row != i/12 || k.Col != i%12 {
			t.Errorf("key %d: at (%d,%d), want (%d,%d)", i, k.Row, k.Col, i/12, i%12)
		}
	}

	// Step 0 is C4 under 12-EDO.
	ref := keys[12]
	if ref.Step != 0 || ref.Label != "C4" {
		t.Errorf("reference key: step %d label %q, want step 0 label C4", ref.Step, ref.Label)
	}
}

func TestStepFormulas(t *testing.T) {
	tests := []struct {
		layout   Layout
		row, col int
		want     int
	}{
		{WickiHayden, 0, 0, -12},
		{WickiHayden, 1, 1, -3},
		{WickiHayden, 0, 1, -5},
		{WickiHayden, 2, 0, -8},
		{HarmonicTable, 0, 0, -12},
		{HarmonicTable, 0, 3, 0},
		{HarmonicTable, 1, 0, -9},
		{Janko, 0, 0, -12},
		{Janko, 1, 0, -11},
		{Janko, 2, 0, 0},
		{Janko, 3, 1, 3},
		{Chromatic, 0, 0, -12},
		{Chromatic, 1, 0, 0},
	}
	for _, tt := range tests {
		got := StepAt(tt.layout, tt.row, tt.col, 12)
		if got != tt.want {
			t.Errorf("%s (%d,%d): step %d, want %d", tt.layout, tt.row, tt.col, got, tt.want)
		}
	}
}

func TestGenerateIdempotent(t *testing.T) {
	for _, l := range []Layout{Chromatic, WickiHayden, HarmonicTable, Janko} {
		for _, sys := range []tuning.System{tuning.EDO12, tuning.EDO24, tuning.EDO53, tuning.Just} {
			a := Generate(l, sys, 261.63, 4, 12)
			b := Generate(l, sys, 261.63, 4, 12)
			if len(a) != len(b) {
				t.Fatalf("%s/%s: batch sizes differ", l, sys)
			}
			for i := range a {
				x, y := a[i], b[i]
				same := x.Step == y.Step && x.Frequency == y.Frequency &&
					x.Label == y.Label && x.Accidental == y.Accidental &&
					x.Row == y.Row && x.Col == y.Col
				if !same {
					t.Errorf("%s/%s key %d: regeneration not identical: %+v vs %+v", l, sys, i, x, y)
				}
			}
		}
	}
}

func TestUniqueIDsWithinBatch(t *testing.T) {
	keys := Generate(WickiHayden, tuning.EDO31, 440, 5, 10)
	seen := make(map[string]bool)
	for _, k := range keys {
		if seen[k.ID] {
			t.Errorf("duplicate key ID %q", k.ID)
		}
		seen[k.ID] = true
	}
}

func TestAccidentalFollowsSharpMarker(t *testing.T) {
	keys := Generate(Chromatic, tuning.EDO12, 261.63, 1, 12)
	// Row 0 of a chromatic grid is C3..B3.
	wantAccidental := []bool{false, true, false, true, false, false, true, false, true, false, true, false}
	for i, k := range keys {
		if k.Accidental != wantAccidental[i] {
			t.Errorf("key %s (%q): accidental %v, want %v", k.ID, k.Label, k.Accidental, wantAccidental[i])
		}
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		sys  tuning.System
		step int
		want string
	}{
		{tuning.EDO12, 0, "C4"},
		{tuning.EDO12, 1, "C#4"},
		{tuning.EDO12, -1, "B3"},
		{tuning.EDO12, -12, "C3"},
		{tuning.EDO12, 12, "C5"},
		{tuning.EDO12, 9, "A4"},
		{tuning.Just, 7, "G4"},
		{tuning.Just, -3, "A3"},
		{tuning.EDO24, 0, "C4"},
		{tuning.EDO24, 2, "C#4"},
		{tuning.EDO24, -24, "C3"},
		{tuning.EDO24, 1, "C#/bC#4"},
		{tuning.EDO24, 3, "C##/bD4"},
		{tuning.EDO31, 0, "0 o4"},
		{tuning.EDO31, 17, "17 o4"},
		{tuning.EDO31, -1, "30 o3"},
		{tuning.EDO53, 53, "0 o5"},
	}
	for _, tt := range tests {
		if got := Label(tt.sys, tt.step); got != tt.want {
			t.Errorf("%s step %d: label %q, want %q", tt.sys, tt.step, got, tt.want)
		}
	}
}
