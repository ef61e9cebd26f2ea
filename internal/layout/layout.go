// Package layout generates key grids for isomorphic keyboard layouts.
//
// A layout is a pure mapping from a (row, col) grid position to a tuning
// step index. Generating a keyboard is a batch computation: every call
// produces a fresh set of key descriptors and the previous batch is simply
// discarded by the caller.
package layout

import (
	"fmt"
	"strings"

	"github.com/yoans/micro-tonal-interface/internal/tuning"
)

// Layout identifies an isomorphic keyboard layout.
type Layout int

const (
	Chromatic Layout = iota
	WickiHayden
	HarmonicTable
	Janko
)

const (
	nameChromatic   = "chromatic"
	nameWickiHayden = "wicki-hayden"
	nameHarmonic    = "harmonic"
	nameJanko       = "janko"
)

// startOffset centers the grid near the reference pitch: step 0 lands one
// octave into the grid rather than at its corner.
const startOffset = 12

var chromaticNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Key describes one key of a generated keyboard. Keys are immutable; IDs
// are unique within one generation batch but not stable across batches.
type Key struct {
	ID         string
	Step       int
	Frequency  float64
	Label      string
	Accidental bool
	Row        int
	Col        int
}

// Parse resolves a layout name. Unknown names fall back to chromatic.
func Parse(name string) Layout {
	switch name {
	case nameWickiHayden:
		return WickiHayden
	case nameHarmonic:
		return HarmonicTable
	case nameJanko:
		return Janko
	default:
		return Chromatic
	}
}

func (l Layout) String() string {
	switch l {
	case WickiHayden:
		return nameWickiHayden
	case HarmonicTable:
		return nameHarmonic
	case Janko:
		return nameJanko
	default:
		return nameChromatic
	}
}

// StepAt returns the tuning step for a grid position. Row and col are
// 0-based; row 0 is the bottom (lowest-pitched) row.
func StepAt(l Layout, row, col, cols int) int {
	switch l {
	case WickiHayden:
		return col*7 + row*2 - startOffset
	case HarmonicTable:
		return col*4 + row*3 - startOffset
	case Janko:
		return col*2 + row%2 + row/2*12 - startOffset
	default:
		return row*cols + col - startOffset
	}
}

// Generate produces the key batch for one keyboard configuration, in
// row-major order. Identical arguments always produce identical steps,
// frequencies and labels.
func Generate(l Layout, sys tuning.System, baseHz float64, rows, cols int) []Key {
	keys := make([]Key, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			step := StepAt(l, row, col, cols)
			label := Label(sys, step)
			keys = append(keys, Key{
				ID:         fmt.Sprintf("k%d", len(keys)),
				Step:       step,
				Frequency:  tuning.Frequency(sys, step, baseHz),
				Label:      label,
				Accidental: strings.Contains(label, "#"),
				Row:        row,
				Col:        col,
			})
		}
	}
	return keys
}

// Label names a step under the given tuning system. Step 0 is C4. For
// 24-EDO, odd quarter-tone steps get a combined sharp-of-lower /
// flat-of-upper label between the two neighboring semitones. Systems with
// other division counts fall back to a numeric step-and-octave label.
func Label(sys tuning.System, step int) string {
	switch sys {
	case tuning.EDO12, tuning.Just:
		return semitoneName(step)
	case tuning.EDO24:
		semitone := floorDiv(step, 2)
		if step%2 == 0 {
			return semitoneName(semitone)
		}
		lower := chromaticNames[mod12(semitone)]
		upper := chromaticNames[mod12(semitone+1)]
		octave := floorDiv(semitone, 12) + 4
		return fmt.Sprintf("%s#/b%s%d", lower, upper, octave)
	default:
		div := sys.Divisions()
		octave := floorDiv(step, div) + 4
		n := ((step % div) + div) % div
		return fmt.Sprintf("%d o%d", n, octave)
	}
}

func semitoneName(step int) string {
	octave := floorDiv(step, 12) + 4
	return fmt.Sprintf("%s%d", chromaticNames[mod12(step)], octave)
}

func mod12(n int) int {
	return ((n % 12) + 12) % 12
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
