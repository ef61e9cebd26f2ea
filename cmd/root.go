package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "microtonal",
	Short: "A microtonal isomorphic keyboard instrument",
	Long: `microtonal turns the terminal into a playable microtonal instrument.

A keyboard layout (chromatic, wicki-hayden, harmonic, janko) is generated
over a tuning system (12/24/31/53-EDO or just intonation) and played with
the typing keys or an external MIDI controller through a virtual input port.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
