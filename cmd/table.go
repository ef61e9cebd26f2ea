package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yoans/micro-tonal-interface/internal/layout"
	"github.com/yoans/micro-tonal-interface/internal/tuning"
)

var tableOpts configOpts

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the key map for a configuration",
	Long: `Print the generated key grid without opening the instrument: one cell
per key with its note label and frequency, higher rows higher in pitch.

Example:
  microtonal table --layout harmonic --tuning just --base 440
`,
	RunE: runTable,
}

func init() {
	addConfigFlags(tableCmd, &tableOpts)
	rootCmd.AddCommand(tableCmd)
}

func runTable(cmd *cobra.Command, args []string) error {
	cfg, err := tableOpts.config()
	if err != nil {
		return err
	}
	if cfg.BaseHz <= 0 {
		return fmt.Errorf("base frequency must be positive, got %v", cfg.BaseHz)
	}
	if cfg.Rows < 1 || cfg.Cols < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", cfg.Rows, cfg.Cols)
	}

	keys := layout.Generate(cfg.Layout, cfg.Tuning, cfg.BaseHz, cfg.Rows, cfg.Cols)
	fmt.Println(renderTable(cfg.Layout, cfg.Tuning, keys, cfg.Rows, cfg.Cols))
	return nil
}

func renderTable(l layout.Layout, sys tuning.System, keys []layout.Key, rows, cols int) string {
	headerStyle := lipgloss.NewStyle().Bold(true)
	naturalStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	accidentalStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s / %s", l, sys)) + "\n")

	for row := rows - 1; row >= 0; row-- {
		for col := 0; col < cols; col++ {
			k := keys[row*cols+col]
			cell := fmt.Sprintf("%-9s %9.2fHz", k.Label, k.Frequency)
			if k.Accidental {
				b.WriteString(accidentalStyle.Render(cell))
			} else {
				b.WriteString(naturalStyle.Render(cell))
			}
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	return b.String()
}
