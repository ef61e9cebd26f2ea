// Package tuning maps integer step indices to frequencies for a set of
// microtonal tuning systems.
package tuning

import "math"

// System identifies a tuning system.
type System int

const (
	EDO12 System = iota
	EDO24
	EDO31
	EDO53
	Just
)

// Names accepted on the configuration surface.
const (
	name12EDO = "12-edo"
	name24EDO = "24-edo"
	name31EDO = "31-edo"
	name53EDO = "53-edo"
	nameJust  = "just"
)

// justRatios is a 5-limit just intonation scale, unison through major
// seventh, indexed by step mod 12.
var justRatios = [12]struct{ num, den float64 }{
	{1, 1},   // unison
	{16, 15}, // minor second
	{9, 8},   // major second
	{6, 5},   // minor third
	{5, 4},   // major third
	{4, 3},   // perfect fourth
	{45, 32}, // tritone
	{3, 2},   // perfect fifth
	{8, 5},   // minor sixth
	{5, 3},   // major sixth
	{9, 5},   // minor seventh
	{15, 8},  // major seventh
}

// Parse resolves a tuning name. Unknown names fall back to 12-EDO; the
// caller never sees an error for a bad identifier.
func Parse(name string) System {
	switch name {
	case name24EDO:
		return EDO24
	case name31EDO:
		return EDO31
	case name53EDO:
		return EDO53
	case nameJust:
		return Just
	default:
		return EDO12
	}
}

func (s System) String() string {
	switch s {
	case EDO24:
		return name24EDO
	case EDO31:
		return name31EDO
	case EDO53:
		return name53EDO
	case Just:
		return nameJust
	default:
		return name12EDO
	}
}

// Divisions returns the number of steps per octave. Just intonation repeats
// every 12 steps.
func (s System) Divisions() int {
	switch s {
	case EDO24:
		return 24
	case EDO31:
		return 31
	case EDO53:
		return 53
	default:
		return 12
	}
}

// Frequency returns the pitch of step relative to baseHz. Step 0 is always
// the reference pitch. Steps are unbounded; extreme values may land outside
// the audible range, which is accepted.
func Frequency(sys System, step int, baseHz float64) float64 {
	if sys == Just {
		octave := floorDiv(step, 12)
		index := ((step % 12) + 12) % 12
		r := justRatios[index]
		return baseHz * (r.num / r.den) * math.Pow(2, float64(octave))
	}
	return baseHz * math.Pow(2, float64(step)/float64(sys.Divisions()))
}

// floorDiv rounds toward negative infinity, so that negative steps fold into
// the octave below rather than truncating toward zero.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
