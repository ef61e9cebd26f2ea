package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/yoans/micro-tonal-interface/internal/instrument"
	"github.com/yoans/micro-tonal-interface/internal/layout"
	"github.com/yoans/micro-tonal-interface/internal/tuning"
)

var (
	midiOpts       configOpts
	midiDeviceName string
)

var midiCmd = &cobra.Command{
	Use:   "midi",
	Short: "Play the instrument from an external MIDI controller",
	Long: `Create a virtual MIDI input port and retune incoming notes through the
selected tuning system: MIDI note 60 plays step 0 at the base frequency,
and each MIDI note above or below moves one tuning step.

The port shows up as a MIDI output destination in other music software.

Example:
  microtonal midi --tuning 31-edo --name "Microtonal 31"
`,
	RunE: runMidi,
}

func init() {
	addConfigFlags(midiCmd, &midiOpts)
	midiCmd.Flags().StringVarP(&midiDeviceName, "name", "n", "Microtonal Keyboard", "name for the virtual MIDI device")
	rootCmd.AddCommand(midiCmd)
}

func runMidi(cmd *cobra.Command, args []string) error {
	cfg, err := midiOpts.config()
	if err != nil {
		return err
	}
	ins, err := instrument.New(cfg)
	if err != nil {
		return err
	}

	m := newMidiModel(midiDeviceName, ins)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.program = p // MIDI callbacks send messages through this

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

const maxMessageHistory = 20

// midiRefNote is the MIDI note playing step 0; notes around it move one
// tuning step per semitone key.
const midiRefNote = 60

// midiModel is the TUI state for the virtual MIDI port.
type midiModel struct {
	deviceName     string
	ins            *instrument.Instrument
	driver         *rtmididrv.Driver
	inPort         drivers.In
	stopFunc       func()
	lastMessage    string
	messageHistory []string
	messageCount   int
	err            error
	width          int
	height         int
	program        *tea.Program
}

// midiNoteMsg is sent when a note event arrives on the port.
type midiNoteMsg struct {
	on   bool
	note uint8
	step int
	freq float64
}

func newMidiModel(name string, ins *instrument.Instrument) *midiModel {
	return &midiModel{
		deviceName:     name,
		ins:            ins,
		messageHistory: make([]string, 0, maxMessageHistory),
	}
}

func (m *midiModel) Init() tea.Cmd {
	return m.initMIDI
}

func (m *midiModel) initMIDI() tea.Msg {
	driver, err := rtmididrv.New()
	if err != nil {
		return midiInitMsg{err: fmt.Errorf("failed to initialize MIDI driver: %w", err)}
	}

	port, err := driver.OpenVirtualIn(m.deviceName)
	if err != nil {
		driver.Close()
		return midiInitMsg{err: fmt.Errorf("failed to create virtual MIDI port: %w", err)}
	}

	return midiInitMsg{driver: driver, inPort: port}
}

type midiInitMsg struct {
	driver *rtmididrv.Driver
	inPort drivers.In
	err    error
}

func (m *midiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case midiInitMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.driver = msg.driver
		m.inPort = msg.inPort
		return m, m.listenMIDI

	case midiNoteMsg:
		m.logNote(msg)
		m.messageCount++
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, m.cleanup
		case " ":
			m.ins.StopAll()
			return m, nil
		}
	}

	return m, nil
}

// listenMIDI parses raw note messages off the port and retunes them
// through the instrument.
func (m *midiModel) listenMIDI() tea.Msg {
	if m.inPort == nil {
		return nil
	}

	stop, err := m.inPort.Listen(func(data []byte, timestamp int32) {
		if len(data) < 3 {
			return
		}

		msgType := data[0] & 0xF0
		note := data[1]
		velocity := data[2]

		switch msgType {
		case 0x90: // Note On (velocity 0 means off)
			if velocity > 0 {
				m.noteOn(note)
			} else {
				m.noteOff(note)
			}
		case 0x80: // Note Off
			m.noteOff(note)
		case 0xB0: // Control Change
			if data[1] == 123 { // all notes off
				m.ins.StopAll()
			}
		}
	}, drivers.ListenConfig{})

	if err != nil {
		m.err = fmt.Errorf("failed to listen to MIDI port: %w", err)
		return nil
	}

	m.stopFunc = stop
	m.lastMessage = fmt.Sprintf("Listening on: %s", m.inPort.String())
	return nil
}

func (m *midiModel) noteOn(note uint8) {
	cfg := m.ins.Config()
	step := int(note) - midiRefNote
	freq := tuning.Frequency(cfg.Tuning, step, cfg.BaseHz)
	m.ins.NoteOn(pointerID(note), freq)
	if m.program != nil {
		m.program.Send(midiNoteMsg{on: true, note: note, step: step, freq: freq})
	}
}

func (m *midiModel) noteOff(note uint8) {
	m.ins.NoteOff(pointerID(note))
	if m.program != nil {
		m.program.Send(midiNoteMsg{on: false, note: note, step: int(note) - midiRefNote})
	}
}

func pointerID(note uint8) string {
	return fmt.Sprintf("midi:%d", note)
}

func (m *midiModel) logNote(msg midiNoteMsg) {
	cfg := m.ins.Config()
	label := layout.Label(cfg.Tuning, msg.step)

	var message string
	if msg.on {
		message = fmt.Sprintf("Note On:  %-10s step %+d  %.2f Hz", label, msg.step, msg.freq)
	} else {
		message = fmt.Sprintf("Note Off: %-10s step %+d", label, msg.step)
	}
	m.lastMessage = message

	m.messageHistory = append([]string{message}, m.messageHistory...)
	if len(m.messageHistory) > maxMessageHistory {
		m.messageHistory = m.messageHistory[:maxMessageHistory]
	}
}

func (m *midiModel) cleanup() tea.Msg {
	if m.stopFunc != nil {
		m.stopFunc()
	}
	if m.inPort != nil {
		m.inPort.Close()
	}
	if m.driver != nil {
		m.driver.Close()
	}
	_ = m.ins.Close()
	return tea.Quit()
}

func (m *midiModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888"))

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00FF00")).
		Bold(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF0000")).
		Bold(true)

	noteStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFD700"))

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#626262"))

	cfg := m.ins.Config()

	b.WriteString(titleStyle.Render("Microtonal MIDI Input") + "\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
		b.WriteString(helpStyle.Render("Press Ctrl+C to quit"))
		return b.String()
	}

	b.WriteString(subtitleStyle.Render("Device Name: ") + m.deviceName + "\n")
	if m.inPort != nil {
		b.WriteString(subtitleStyle.Render("MIDI Port: ") + statusStyle.Render(m.inPort.String()) + "\n")
	} else {
		b.WriteString(subtitleStyle.Render("MIDI Port: ") + "Initializing...\n")
	}
	b.WriteString(subtitleStyle.Render("Tuning: ") + cfg.Tuning.String())
	b.WriteString(subtitleStyle.Render("  Base: ") + fmt.Sprintf("%.2f Hz (MIDI note %d)", cfg.BaseHz, midiRefNote))
	b.WriteString("\n\n")

	b.WriteString(subtitleStyle.Render("Sounding:") + "\n")
	notes := m.ins.ActiveNotes()
	if len(notes) == 0 {
		b.WriteString("  (no notes playing)\n")
	} else {
		parts := make([]string, 0, len(notes))
		for _, n := range notes {
			parts = append(parts, fmt.Sprintf("%.1fHz", n.Frequency))
		}
		b.WriteString("  " + noteStyle.Render(strings.Join(parts, " ")) + "\n")
	}

	b.WriteString("\n" + subtitleStyle.Render(fmt.Sprintf("Message Log: [%d total]", m.messageCount)) + "\n")

	logStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	logHighlightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))

	if len(m.messageHistory) == 0 {
		b.WriteString("  " + logStyle.Render("(waiting for input)") + "\n")
	} else {
		displayCount := len(m.messageHistory)
		if displayCount > 10 {
			displayCount = 10
		}
		for i := 0; i < displayCount; i++ {
			msg := m.messageHistory[i]
			if i == 0 {
				b.WriteString("  " + logHighlightStyle.Render("▶ "+msg) + "\n")
			} else {
				b.WriteString("  " + logStyle.Render("  "+msg) + "\n")
			}
		}
	}

	b.WriteString("\n" + helpStyle.Render("space: all notes off • q/ctrl+c: quit"))

	return b.String()
}
