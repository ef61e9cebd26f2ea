// Package capture records a playing session to a Standard MIDI File.
//
// MIDI has no native microtonal pitch, so each note is written as the
// nearest semitone plus a per-channel pitch bend, with notes rotated
// across channels so simultaneous bends do not fight each other.
package capture

import (
	"fmt"
	"math"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerQuarterNote = 960
	recordingBPM        = 120
	velocity            = 100

	// Standard pitch bend range of +/-2 semitones.
	bendRangeSemitones = 2
)

type timedMessage struct {
	offset time.Duration
	msg    midi.Message
}

type openNote struct {
	channel uint8
	key     uint8
}

// Recorder accumulates timestamped note events relative to the first
// event it sees.
type Recorder struct {
	started     time.Time
	events      []timedMessage
	open        map[string]openNote
	nextChannel uint8
}

func NewRecorder() *Recorder {
	return &Recorder{open: make(map[string]openNote)}
}

// Len returns the number of recorded MIDI events.
func (r *Recorder) Len() int { return len(r.events) }

func (r *Recorder) offset(at time.Time) time.Duration {
	if r.started.IsZero() {
		r.started = at
	}
	d := at.Sub(r.started)
	if d < 0 {
		d = 0
	}
	return d
}

// NoteOn records the start of a note. A note id that is already open is
// closed first, mirroring the synth's cut-over.
func (r *Recorder) NoteOn(id string, frequencyHz float64, at time.Time) {
	off := r.offset(at)
	if prev, ok := r.open[id]; ok {
		r.events = append(r.events, timedMessage{off, midi.NoteOff(prev.channel, prev.key)})
		delete(r.open, id)
	}

	ch := r.nextChannel
	r.nextChannel = (r.nextChannel + 1) % 16
	if r.nextChannel == 9 { // skip the GM percussion channel
		r.nextChannel++
	}

	key, bend := midiKeyAndBend(frequencyHz)
	r.events = append(r.events,
		timedMessage{off, midi.Pitchbend(ch, bend)},
		timedMessage{off, midi.NoteOn(ch, key, velocity)},
	)
	r.open[id] = openNote{channel: ch, key: key}
}

// NoteOff records the end of a note. Unknown ids are ignored.
func (r *Recorder) NoteOff(id string, at time.Time) {
	n, ok := r.open[id]
	if !ok {
		return
	}
	delete(r.open, id)
	r.events = append(r.events, timedMessage{r.offset(at), midi.NoteOff(n.channel, n.key)})
}

// WriteFile closes any still-open notes and writes the session as a
// two-track SMF (tempo track plus one event track) at 120 BPM.
func (r *Recorder) WriteFile(path string) error {
	if len(r.events) == 0 {
		return fmt.Errorf("nothing recorded")
	}

	last := r.events[len(r.events)-1].offset
	for id := range r.open {
		r.NoteOff(id, r.started.Add(last))
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(recordingBPM))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return fmt.Errorf("error adding tempo track: %w", err)
	}

	var track smf.Track
	prev := uint32(0)
	for _, ev := range r.events {
		tick := ticksAt(ev.offset)
		track.Add(tick-prev, ev.msg)
		prev = tick
	}
	track.Close(0)
	if err := sm.Add(track); err != nil {
		return fmt.Errorf("error adding note track: %w", err)
	}

	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

// ticksAt converts a session offset to MIDI ticks at the recording tempo.
func ticksAt(offset time.Duration) uint32 {
	beats := offset.Minutes() * recordingBPM
	return uint32(math.Round(beats * ticksPerQuarterNote))
}

// midiKeyAndBend splits a frequency into the nearest MIDI key and the
// pitch bend covering the remainder.
func midiKeyAndBend(frequencyHz float64) (uint8, int16) {
	note := 69 + 12*math.Log2(frequencyHz/440)
	nearest := math.Round(note)
	if nearest < 0 {
		nearest = 0
	} else if nearest > 127 {
		nearest = 127
	}

	frac := note - nearest // within [-0.5, 0.5] unless clamped
	bend := frac / bendRangeSemitones * 8192
	if bend > 8191 {
		bend = 8191
	} else if bend < -8192 {
		bend = -8192
	}
	return uint8(nearest), int16(bend)
}
