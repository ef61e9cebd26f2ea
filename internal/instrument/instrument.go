// Package instrument assembles tuning, layout, synth and router into one
// playable keyboard. The instrument is the single context object the UI
// layer holds; it is created once at startup and closed at shutdown.
package instrument

import (
	"fmt"

	"github.com/yoans/micro-tonal-interface/internal/audio"
	"github.com/yoans/micro-tonal-interface/internal/input"
	"github.com/yoans/micro-tonal-interface/internal/layout"
	"github.com/yoans/micro-tonal-interface/internal/tuning"
)

// DefaultBaseHz is middle C.
const DefaultBaseHz = 261.63

// Config is the full configuration surface of the instrument.
type Config struct {
	Layout   layout.Layout
	Tuning   tuning.System
	BaseHz   float64
	Rows     int
	Cols     int
	Waveform audio.Waveform
	Volume   float64
}

// DefaultConfig is a 4x12 chromatic 12-EDO keyboard around middle C.
func DefaultConfig() Config {
	return Config{
		Layout:   layout.Chromatic,
		Tuning:   tuning.EDO12,
		BaseHz:   DefaultBaseHz,
		Rows:     4,
		Cols:     12,
		Waveform: audio.WaveSine,
		Volume:   0.8,
	}
}

func (c Config) validate() error {
	if c.BaseHz <= 0 {
		return fmt.Errorf("base frequency must be positive, got %v", c.BaseHz)
	}
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Rows, c.Cols)
	}
	return nil
}

// Instrument owns the key batch and the audio path behind it.
type Instrument struct {
	cfg    Config
	keys   []layout.Key
	synth  *audio.Synth
	router *input.Router
}

// New builds an instrument from cfg. Volume is clamped into [0,1]; an
// invalid base frequency or grid is rejected.
func New(cfg Config) (*Instrument, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Volume < 0 {
		cfg.Volume = 0
	} else if cfg.Volume > 1 {
		cfg.Volume = 1
	}

	synth := audio.NewSynth()
	synth.SetWaveform(cfg.Waveform)
	synth.SetVolume(cfg.Volume)

	ins := &Instrument{
		cfg:    cfg,
		synth:  synth,
		router: input.New(synth),
	}
	ins.regenerate()
	return ins, nil
}

// regenerate replaces the key batch. The router force-stops every voice
// keyed by the old batch before the swap.
func (ins *Instrument) regenerate() {
	ins.keys = layout.Generate(ins.cfg.Layout, ins.cfg.Tuning, ins.cfg.BaseHz, ins.cfg.Rows, ins.cfg.Cols)
	ins.router.SetKeys(ins.keys)
}

// Config returns the current configuration.
func (ins *Instrument) Config() Config { return ins.cfg }

// Keys returns the current key batch in row-major order.
func (ins *Instrument) Keys() []layout.Key { return ins.keys }

// Router exposes the input router for the event source driving this
// instrument.
func (ins *Instrument) Router() *input.Router { return ins.router }

// ActiveNotes lists the sounding notes.
func (ins *Instrument) ActiveNotes() []audio.ActiveNote { return ins.synth.ActiveNotes() }

// NoteOn starts a voice directly, bypassing the key grid. Used by event
// sources that already know their frequency, like MIDI input.
func (ins *Instrument) NoteOn(id string, frequencyHz float64) { ins.synth.NoteOn(id, frequencyHz) }

// NoteOff releases a directly started voice. Unknown ids are ignored.
func (ins *Instrument) NoteOff(id string) { ins.synth.NoteOff(id) }

// SetLayout switches the keyboard layout and regenerates the keys.
func (ins *Instrument) SetLayout(l layout.Layout) {
	ins.cfg.Layout = l
	ins.regenerate()
}

// SetTuning switches the tuning system and regenerates the keys.
func (ins *Instrument) SetTuning(sys tuning.System) {
	ins.cfg.Tuning = sys
	ins.regenerate()
}

// SetBaseFrequency moves the reference pitch. Non-positive values are
// rejected and leave the instrument unchanged.
func (ins *Instrument) SetBaseFrequency(hz float64) error {
	if hz <= 0 {
		return fmt.Errorf("base frequency must be positive, got %v", hz)
	}
	ins.cfg.BaseHz = hz
	ins.regenerate()
	return nil
}

// SetGridSize resizes the keyboard.
func (ins *Instrument) SetGridSize(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", rows, cols)
	}
	ins.cfg.Rows, ins.cfg.Cols = rows, cols
	ins.regenerate()
	return nil
}

// SetWaveform changes the wave shape for new and sounding voices alike.
func (ins *Instrument) SetWaveform(w audio.Waveform) {
	ins.cfg.Waveform = w
	ins.synth.SetWaveform(w)
}

// SetVolume sets the master volume, clamped to [0,1].
func (ins *Instrument) SetVolume(vol float64) {
	if vol < 0 {
		vol = 0
	} else if vol > 1 {
		vol = 1
	}
	ins.cfg.Volume = vol
	ins.synth.SetVolume(vol)
}

// StopAll releases every binding and silences the synth.
func (ins *Instrument) StopAll() {
	ins.router.ReleaseAll()
}

// Close tears the instrument down: all voices stopped, device released.
func (ins *Instrument) Close() error {
	ins.StopAll()
	return ins.synth.Close()
}
