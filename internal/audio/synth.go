// Package audio provides the synthesis voices behind the keyboard.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 44100
	channelCount = 2 // stereo
	bitDepth     = 2 // 16-bit

	// Fixed note envelope: linear attack to the target amplitude, linear
	// release from wherever the envelope currently sits.
	voiceAmplitude = 0.3
	attackSeconds  = 0.05
	releaseSeconds = 0.1
)

// Waveform represents different oscillator wave shapes.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
)

// ParseWaveform resolves a waveform name from the configuration surface.
func ParseWaveform(name string) (Waveform, error) {
	switch name {
	case "sine":
		return WaveSine, nil
	case "square":
		return WaveSquare, nil
	case "sawtooth":
		return WaveSawtooth, nil
	case "triangle":
		return WaveTriangle, nil
	default:
		return WaveSine, fmt.Errorf("unknown waveform %q", name)
	}
}

func (w Waveform) String() string {
	switch w {
	case WaveSquare:
		return "square"
	case WaveSawtooth:
		return "sawtooth"
	case WaveTriangle:
		return "triangle"
	default:
		return "sine"
	}
}

// sinkState tracks the one-shot lazy initialization of the audio device.
type sinkState int

const (
	sinkUninitialized sinkState = iota
	sinkInitializing
	sinkReady
	sinkFailed
)

// voice is a single sounding note. A voice leaves the id bookkeeping the
// moment its release is scheduled but keeps producing samples until the
// envelope reaches zero.
type voice struct {
	id        string
	frequency float64
	waveform  Waveform
	phase     float64
	envelope  float64
	envStep   float64
	releasing bool
	active    bool
	startedAt time.Time
}

// ActiveNote is the externally visible view of a sounding note.
type ActiveNote struct {
	ID        string
	Frequency float64
}

// Synth is a polyphonic synthesizer with one voice per note ID.
//
// The audio device is opened lazily on the first NoteOn. The oto player
// pulls samples on its own goroutine, so all state is guarded by one mutex.
type Synth struct {
	mu           sync.Mutex
	state        sinkState
	otoCtx       *oto.Context
	player       *oto.Player
	voices       map[string]*voice // sounding notes by id
	mix          []*voice          // everything still producing samples, tails included
	waveform     Waveform
	masterVolume float64

	// initSink opens the audio device; swapped for a stub in tests.
	initSink func() error
}

// NewSynth creates a synthesizer. No audio device is opened until the
// first note plays.
func NewSynth() *Synth {
	s := &Synth{
		voices:       make(map[string]*voice),
		waveform:     WaveSine,
		masterVolume: 1.0,
	}
	s.initSink = s.openSink
	return s
}

func (s *Synth) openSink() error {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return err
	}
	<-readyChan

	s.otoCtx = otoCtx
	s.player = otoCtx.NewPlayer(&synthReader{synth: s})
	s.player.Play()
	return nil
}

// ensureSinkLocked runs the one-shot init state machine. A failed attempt
// leaves the synth silent; the next NoteOn retries.
func (s *Synth) ensureSinkLocked() bool {
	if s.state == sinkReady {
		return true
	}
	s.state = sinkInitializing
	if err := s.initSink(); err != nil {
		s.state = sinkFailed
		slog.Warn("audio sink unavailable", "err", err)
		return false
	}
	s.state = sinkReady
	return true
}

// NoteOn starts a voice for id at the given frequency. If a voice for id
// is already sounding it is cut over: stopped immediately, never layered.
func (s *Synth) NoteOn(id string, frequencyHz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ensureSinkLocked() {
		slog.Warn("dropping note, no audio sink", "id", id)
		return
	}

	if old, ok := s.voices[id]; ok {
		old.active = false
		delete(s.voices, id)
	}

	v := &voice{
		id:        id,
		frequency: frequencyHz,
		waveform:  s.waveform,
		envStep:   voiceAmplitude / (attackSeconds * sampleRate),
		active:    true,
		startedAt: time.Now(),
	}
	s.voices[id] = v
	s.mix = append(s.mix, v)
}

// NoteOff releases the voice for id. Unknown ids are ignored.
func (s *Synth) NoteOff(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteOffLocked(id)
}

func (s *Synth) noteOffLocked(id string) {
	v, ok := s.voices[id]
	if !ok {
		return
	}
	// The id is free again as soon as the release is scheduled; the mixer
	// drains the tail on its own.
	delete(s.voices, id)

	v.releasing = true
	if v.envelope <= 0 {
		v.active = false
		return
	}
	v.envStep = v.envelope / (releaseSeconds * sampleRate)
}

// StopAll releases every sounding note.
func (s *Synth) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.voices {
		s.noteOffLocked(id)
	}
}

// SetWaveform sets the default wave shape for new voices and switches
// every sounding voice in place.
func (s *Synth) SetWaveform(w Waveform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waveform = w
	for _, v := range s.mix {
		v.waveform = w
	}
}

// SetVolume sets the master volume, clamped to [0, 1]. Takes effect on the
// next rendered sample, without a ramp.
func (s *Synth) SetVolume(vol float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vol < 0 {
		vol = 0
	} else if vol > 1 {
		vol = 1
	}
	s.masterVolume = vol
}

// ActiveNotes lists the sounding notes, ordered by id.
func (s *Synth) ActiveNotes() []ActiveNote {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := make([]ActiveNote, 0, len(s.voices))
	for _, v := range s.voices {
		notes = append(notes, ActiveNote{ID: v.id, Frequency: v.frequency})
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes
}

// Close silences the synthesizer and drops the device.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.mix {
		v.active = false
	}
	s.voices = make(map[string]*voice)
	s.mix = nil
	s.state = sinkUninitialized

	// As of oto v3.4 the player needs no explicit Close; it is cleaned up
	// when garbage collected.
	s.player = nil
	return nil
}

// synthReader implements io.Reader for continuous audio generation.
type synthReader struct {
	synth *Synth
}

func (r *synthReader) Read(buf []byte) (int, error) {
	s := r.synth
	s.mu.Lock()
	defer s.mu.Unlock()

	numSamples := len(buf) / (channelCount * bitDepth)

	for i := 0; i < numSamples; i++ {
		var sample float64

		for _, v := range s.mix {
			if !v.active {
				continue
			}

			sample += generateWave(v.waveform, v.phase) * v.envelope

			v.phase += v.frequency / sampleRate
			if v.phase >= 1.0 {
				v.phase -= 1.0
			}

			if v.releasing {
				v.envelope -= v.envStep
				if v.envelope <= 0 {
					v.envelope = 0
					v.active = false
				}
			} else if v.envelope < voiceAmplitude {
				v.envelope += v.envStep
				if v.envelope > voiceAmplitude {
					v.envelope = voiceAmplitude
				}
			}
		}

		sample *= s.masterVolume
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}

		sampleInt := int16(sample * 32767)

		idx := i * channelCount * bitDepth
		buf[idx] = byte(sampleInt)
		buf[idx+1] = byte(sampleInt >> 8)
		buf[idx+2] = byte(sampleInt)
		buf[idx+3] = byte(sampleInt >> 8)
	}

	// Drop finished tails.
	live := s.mix[:0]
	for _, v := range s.mix {
		if v.active {
			live = append(live, v)
		}
	}
	s.mix = live

	return len(buf), nil
}

func generateWave(w Waveform, phase float64) float64 {
	switch w {
	case WaveSquare:
		if phase < 0.5 {
			return 0.8
		}
		return -0.8
	case WaveSawtooth:
		return 2*phase - 1
	case WaveTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
