package tuning

import (
	"math"
	"testing"
)

const relTolerance = 1e-9

func closeEnough(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= relTolerance*math.Max(math.Abs(a), math.Abs(b))
}

func TestEDOFrequencies(t *testing.T) {
	base := 261.63

	tests := []struct {
		sys       System
		divisions int
	}{
		{EDO12, 12},
		{EDO24, 24},
		{EDO31, 31},
		{EDO53, 53},
	}

	for _, tt := range tests {
		for step := -60; step <= 60; step++ {
			want := base * math.Pow(2, float64(step)/float64(tt.divisions))
			got := Frequency(tt.sys, step, base)
			if !closeEnough(got, want) {
				t.Errorf("%s step %d: got %v, want %v", tt.sys, step, got, want)
			}
		}
	}
}

func TestStepZeroIsReference(t *testing.T) {
	base := 440.0
	for _, sys := range []System{EDO12, EDO24, EDO31, EDO53, Just} {
		if got := Frequency(sys, 0, base); got != base {
			t.Errorf("%s: step 0 = %v, want %v", sys, got, base)
		}
	}
}

func TestEDOOctaveDoubles(t *testing.T) {
	base := 220.0
	tests := []struct {
		sys  System
		step int
	}{
		{EDO12, 12},
		{EDO24, 24},
		{EDO31, 31},
		{EDO53, 53},
	}
	for _, tt := range tests {
		if got := Frequency(tt.sys, tt.step, base); !closeEnough(got, base*2) {
			t.Errorf("%s step %d: got %v, want %v", tt.sys, tt.step, got, base*2)
		}
	}
}

func TestJustIntonationRatios(t *testing.T) {
	base := 200.0

	// Spot-check the pure intervals.
	tests := []struct {
		step int
		want float64
	}{
		{0, 200},           // unison
		{7, 300},           // perfect fifth, 3/2
		{4, 250},           // major third, 5/4
		{5, 200 * 4 / 3.0}, // perfect fourth
		{12, 400},          // octave
		{19, 600},          // fifth above the octave
		{-12, 100},         // octave down
	}
	for _, tt := range tests {
		if got := Frequency(Just, tt.step, base); !closeEnough(got, tt.want) {
			t.Errorf("just step %d: got %v, want %v", tt.step, got, tt.want)
		}
	}
}

func TestJustNegativeStepFolding(t *testing.T) {
	base := 440.0

	// A step below the reference must agree with the same scale degree one
	// octave up, halved.
	for step := -24; step < 0; step++ {
		up := Frequency(Just, step+12, base)
		if got := Frequency(Just, step, base); !closeEnough(got, up/2) {
			t.Errorf("just step %d: got %v, want %v", step, got, up/2)
		}
	}
}

func TestParseFallsBackTo12EDO(t *testing.T) {
	tests := []struct {
		name string
		want System
	}{
		{"12-edo", EDO12},
		{"24-edo", EDO24},
		{"31-edo", EDO31},
		{"53-edo", EDO53},
		{"just", Just},
		{"19-edo", EDO12},
		{"", EDO12},
		{"pythagorean", EDO12},
	}
	for _, tt := range tests {
		if got := Parse(tt.name); got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, sys := range []System{EDO12, EDO24, EDO31, EDO53, Just} {
		if got := Parse(sys.String()); got != sys {
			t.Errorf("Parse(%q) = %v, want %v", sys.String(), got, sys)
		}
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{0, 12, 0},
		{11, 12, 0},
		{12, 12, 1},
		{-1, 12, -1},
		{-12, 12, -1},
		{-13, 12, -2},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
