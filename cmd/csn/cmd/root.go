package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "csn",
	Short: "Compact schematic notation tools",
	Long: `csn converts KiCad schematics to a compact canonical text form
and back.

Examples:
  csn encode board.kicad_sch -o board.csn   # Schematic to canonical text
  csn decode board.csn -o board.kicad_sch   # Canonical text to schematic
  csn info board.kicad_sch                  # Show components and nets`,
	Version: "1.0.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
