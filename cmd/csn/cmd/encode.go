package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/csn/pkg/csn"
	"github.com/OpenTraceLab/csn/pkg/kicad/schematic"
	"github.com/OpenTraceLab/csn/pkg/netlist"
)

var encodeOutput string

var encodeCmd = &cobra.Command{
	Use:   "encode <schematic_file>",
	Short: "Convert a KiCad schematic to canonical text",
	Long: `Parse a KiCad schematic file (.kicad_sch), analyze its wire
connectivity, and write the canonical text form. Without -o the result
goes to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", "", "output file (default stdout)")
}

func runEncode(cmd *cobra.Command, args []string) error {
	sch, err := schematic.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing schematic: %w", err)
	}

	nl := netlist.Analyze(sch)
	if verbose {
		fmt.Fprintf(os.Stderr, "%d components, %d nets\n", len(nl.Components), len(nl.Nets))
	}

	out := csn.Encode(sch, nl)
	if encodeOutput == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(encodeOutput, []byte(out), 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", encodeOutput, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "written to %s\n", encodeOutput)
	}
	return nil
}
