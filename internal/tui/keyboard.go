// Package tui renders the playable keyboard grid in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yoans/micro-tonal-interface/internal/audio"
	"github.com/yoans/micro-tonal-interface/internal/capture"
	"github.com/yoans/micro-tonal-interface/internal/input"
	"github.com/yoans/micro-tonal-interface/internal/instrument"
	"github.com/yoans/micro-tonal-interface/internal/layout"
	"github.com/yoans/micro-tonal-interface/internal/tuning"
)

// qwertyRows maps typing rows onto grid rows, bottom row first so pitch
// rises with the hands.
var qwertyRows = []string{
	"zxcvbnm,./",
	"asdfghjkl;'",
	"qwertyuiop[]",
	"1234567890-=",
}

// semitoneRatio shifts the base frequency by one 12-EDO step.
const semitoneRatio = 1.0594630943592953

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	naturalStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#3A3A3A")).
			Foreground(lipgloss.Color("#FAFAFA"))

	accidentalStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1C1C1C")).
			Foreground(lipgloss.Color("#AAAAAA"))

	activeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#00AA00")).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	recordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// Model is the bubbletea model for the playable keyboard.
type Model struct {
	ins        *instrument.Instrument
	recorder   *capture.Recorder
	recording  bool
	recordPath string
	message    string
	width      int
	height     int
}

// NewModel wraps an instrument for interactive play. recordPath is where
// a recorded session is written when recording stops.
func NewModel(ins *instrument.Instrument, recordPath string) Model {
	return Model{
		ins:        ins,
		recordPath: recordPath,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)
	}

	return m, nil
}

// gridTop is the first view line of the key grid: title, blank, status,
// blank.
const gridTop = 4

// cellWidth is the rendered width of one key cell plus its separator.
const cellWidth = 11

// updateMouse treats the mouse as one more pointer: press starts a note,
// dragging across cells retargets it, release ends it.
func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	router := m.ins.Router()
	key, overKey := m.keyAtCell(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && overKey {
			router.Handle(input.Press{Pointer: "mouse", KeyID: key.ID})
			if m.recording {
				m.recorder.NoteOn(key.ID, key.Frequency, time.Now())
			}
		}

	case tea.MouseActionMotion:
		held, holding := router.Held("mouse")
		if holding && overKey && held.ID != key.ID {
			router.Handle(input.Retarget{Pointer: "mouse", KeyID: key.ID})
			if m.recording {
				m.recorder.NoteOff(held.ID, time.Now())
				m.recorder.NoteOn(key.ID, key.Frequency, time.Now())
			}
		}

	case tea.MouseActionRelease:
		if held, holding := router.Held("mouse"); holding {
			router.Handle(input.Release{Pointer: "mouse"})
			if m.recording {
				m.recorder.NoteOff(held.ID, time.Now())
			}
		}
	}

	return m, nil
}

// keyAtCell resolves terminal coordinates to the key rendered there.
func (m Model) keyAtCell(x, y int) (layout.Key, bool) {
	cfg := m.ins.Config()
	row := cfg.Rows - 1 - (y - gridTop)
	col := x / cellWidth
	if row < 0 || row >= cfg.Rows || col < 0 || col >= cfg.Cols {
		return layout.Key{}, false
	}
	return m.ins.Keys()[row*cfg.Cols+col], true
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.stopRecording()
		_ = m.ins.Close()
		return m, tea.Quit

	case " ":
		m.ins.StopAll()
		m.message = ""
		return m, nil

	case "tab":
		m.ins.SetLayout(nextLayout(m.ins.Config().Layout))
		return m, nil

	case "shift+tab":
		m.ins.SetTuning(nextTuning(m.ins.Config().Tuning))
		return m, nil

	case "enter":
		m.ins.SetWaveform(nextWaveform(m.ins.Config().Waveform))
		return m, nil

	case "up":
		m.ins.SetVolume(m.ins.Config().Volume + 0.05)
		return m, nil

	case "down":
		m.ins.SetVolume(m.ins.Config().Volume - 0.05)
		return m, nil

	case "right":
		if err := m.ins.SetBaseFrequency(m.ins.Config().BaseHz * semitoneRatio); err != nil {
			m.message = err.Error()
		}
		return m, nil

	case "left":
		if err := m.ins.SetBaseFrequency(m.ins.Config().BaseHz / semitoneRatio); err != nil {
			m.message = err.Error()
		}
		return m, nil

	case "ctrl+r":
		m.toggleRecording()
		return m, nil
	}

	if key, ok := m.keyUnderRune(msg.String()); ok {
		m.toggleNote(msg.String(), key)
	}
	return m, nil
}

// keyUnderRune resolves a typed character to the key descriptor at its
// grid position, if the grid reaches that far.
func (m Model) keyUnderRune(r string) (layout.Key, bool) {
	cfg := m.ins.Config()
	for row, chars := range qwertyRows {
		col := strings.Index(chars, r)
		if col < 0 {
			continue
		}
		if row >= cfg.Rows || col >= cfg.Cols {
			return layout.Key{}, false
		}
		return m.ins.Keys()[row*cfg.Cols+col], true
	}
	return layout.Key{}, false
}

// toggleNote presses or releases a key. Terminals deliver no key-up, so
// the same keystroke alternates between the two.
func (m *Model) toggleNote(pointer string, key layout.Key) {
	router := m.ins.Router()
	if held, ok := router.Held(pointer); ok && held.ID == key.ID {
		router.Release(pointer)
		if m.recording {
			m.recorder.NoteOff(key.ID, time.Now())
		}
		return
	}
	router.Press(pointer, key.ID)
	if m.recording {
		m.recorder.NoteOn(key.ID, key.Frequency, time.Now())
	}
}

func (m *Model) toggleRecording() {
	if m.recording {
		m.stopRecording()
		return
	}
	m.recorder = capture.NewRecorder()
	m.recording = true
	m.message = "recording"
}

func (m *Model) stopRecording() {
	if !m.recording {
		return
	}
	m.recording = false
	if err := m.recorder.WriteFile(m.recordPath); err != nil {
		m.message = fmt.Sprintf("Error saving recording: %v", err)
		return
	}
	m.message = fmt.Sprintf("Saved %d events to %s", m.recorder.Len(), m.recordPath)
}

func (m Model) View() string {
	var b strings.Builder
	cfg := m.ins.Config()

	b.WriteString(titleStyle.Render("Microtonal Keyboard") + "\n\n")

	b.WriteString(subtitleStyle.Render("Layout: ") + cfg.Layout.String())
	b.WriteString(subtitleStyle.Render("  Tuning: ") + cfg.Tuning.String())
	b.WriteString(subtitleStyle.Render("  Base: ") + fmt.Sprintf("%.2f Hz", cfg.BaseHz))
	b.WriteString(subtitleStyle.Render("  Wave: ") + cfg.Waveform.String())
	b.WriteString(subtitleStyle.Render("  Vol: ") + fmt.Sprintf("%.0f%%", cfg.Volume*100))
	if m.recording {
		b.WriteString("  " + recordStyle.Render("● REC"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid())

	b.WriteString("\n" + subtitleStyle.Render("Sounding:") + " ")
	notes := m.ins.ActiveNotes()
	if len(notes) == 0 {
		b.WriteString("(none)")
	} else {
		parts := make([]string, 0, len(notes))
		for _, n := range notes {
			parts = append(parts, fmt.Sprintf("%.1fHz", n.Frequency))
		}
		b.WriteString(noteStyle.Render(strings.Join(parts, " ")))
	}
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString("\n" + errorStyle.Render(m.message) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("letter rows play/toggle notes • space: all off • tab: layout • shift+tab: tuning"))
	b.WriteString("\n" + helpStyle.Render("enter: waveform • ←/→: base pitch • ↑/↓: volume • ctrl+r: record • esc: quit"))

	return b.String()
}

// renderGrid draws the key grid, top row first so higher pitches sit
// higher on screen.
func (m Model) renderGrid() string {
	cfg := m.ins.Config()
	keys := m.ins.Keys()
	held := m.ins.Router().HeldKeyIDs()

	var b strings.Builder
	for row := cfg.Rows - 1; row >= 0; row-- {
		var binding string
		if row < len(qwertyRows) {
			binding = qwertyRows[row]
		}

		for col := 0; col < cfg.Cols; col++ {
			key := keys[row*cfg.Cols+col]

			char := " "
			if col < len(binding) {
				char = string(binding[col])
			}
			cell := fmt.Sprintf(" %s %-7s", char, key.Label)

			style := naturalStyle
			if key.Accidental {
				style = accidentalStyle
			}
			if held[key.ID] {
				style = activeStyle
			}
			b.WriteString(style.Render(cell))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func nextLayout(l layout.Layout) layout.Layout {
	order := []layout.Layout{layout.Chromatic, layout.WickiHayden, layout.HarmonicTable, layout.Janko}
	for i, cur := range order {
		if cur == l {
			return order[(i+1)%len(order)]
		}
	}
	return layout.Chromatic
}

func nextTuning(sys tuning.System) tuning.System {
	order := []tuning.System{tuning.EDO12, tuning.EDO24, tuning.EDO31, tuning.EDO53, tuning.Just}
	for i, cur := range order {
		if cur == sys {
			return order[(i+1)%len(order)]
		}
	}
	return tuning.EDO12
}

func nextWaveform(w audio.Waveform) audio.Waveform {
	order := []audio.Waveform{audio.WaveSine, audio.WaveTriangle, audio.WaveSawtooth, audio.WaveSquare}
	for i, cur := range order {
		if cur == w {
			return order[(i+1)%len(order)]
		}
	}
	return audio.WaveSine
}
