package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yoans/micro-tonal-interface/internal/audio"
	"github.com/yoans/micro-tonal-interface/internal/instrument"
	"github.com/yoans/micro-tonal-interface/internal/layout"
	"github.com/yoans/micro-tonal-interface/internal/tui"
	"github.com/yoans/micro-tonal-interface/internal/tuning"
)

// configOpts is the flag surface shared by the commands that build an
// instrument.
type configOpts struct {
	layoutName string
	tuningName string
	baseHz     float64
	rows       int
	cols       int
	waveform   string
	volume     float64
}

func addConfigFlags(cmd *cobra.Command, o *configOpts) {
	cmd.Flags().StringVarP(&o.layoutName, "layout", "l", "chromatic", "keyboard layout (chromatic, wicki-hayden, harmonic, janko)")
	cmd.Flags().StringVarP(&o.tuningName, "tuning", "t", "12-edo", "tuning system (12-edo, 24-edo, 31-edo, 53-edo, just)")
	cmd.Flags().Float64VarP(&o.baseHz, "base", "b", instrument.DefaultBaseHz, "reference frequency in Hz for step 0")
	cmd.Flags().IntVar(&o.rows, "rows", 4, "grid rows")
	cmd.Flags().IntVar(&o.cols, "cols", 12, "grid columns")
	cmd.Flags().StringVarP(&o.waveform, "waveform", "w", "sine", "oscillator waveform (sine, triangle, sawtooth, square)")
	cmd.Flags().Float64Var(&o.volume, "volume", 0.8, "master volume in [0,1]")
}

func (o configOpts) config() (instrument.Config, error) {
	wave, err := audio.ParseWaveform(o.waveform)
	if err != nil {
		return instrument.Config{}, err
	}
	return instrument.Config{
		Layout:   layout.Parse(o.layoutName),
		Tuning:   tuning.Parse(o.tuningName),
		BaseHz:   o.baseHz,
		Rows:     o.rows,
		Cols:     o.cols,
		Waveform: wave,
		Volume:   o.volume,
	}, nil
}

var (
	playOpts       configOpts
	playRecordPath string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the keyboard with the typing keys",
	Long: `Open the interactive keyboard. The four typing rows map onto the key
grid, bottom row lowest; pressing a bound key toggles its note. Layout,
tuning, base pitch, waveform and volume can all be changed live.

Example:
  microtonal play --layout wicki-hayden --tuning 31-edo --base 440
`,
	RunE: runPlay,
}

func init() {
	addConfigFlags(playCmd, &playOpts)
	playCmd.Flags().StringVar(&playRecordPath, "record", "session.mid", "path for recorded sessions (ctrl+r)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := playOpts.config()
	if err != nil {
		return err
	}
	ins, err := instrument.New(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(ins, playRecordPath), tea.WithAltScreen(), tea.WithMouseAllMotion())

	// Handle graceful shutdown
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
