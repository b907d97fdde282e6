package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/csn/pkg/csn"
)

var decodeOutput string

var decodeCmd = &cobra.Command{
	Use:   "decode <csn_file>",
	Short: "Reconstruct a KiCad schematic from canonical text",
	Long: `Read a canonical text file and emit a KiCad schematic
(.kicad_sch). Component pin placement is inferred from wire geometry, so
the drawing is an approximation; connectivity is preserved.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVarP(&decodeOutput, "output", "o", "", "output file (default stdout)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading %s: %w", args[0], err)
	}

	doc, err := csn.ParseDocument(string(data))
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", args[0], err)
	}

	out, err := csn.Decode(doc, csn.BuiltinLibrary())
	if err != nil {
		return fmt.Errorf("error decoding: %w", err)
	}

	if decodeOutput == "" {
		fmt.Println(out)
		return nil
	}
	if err := os.WriteFile(decodeOutput, []byte(out+"\n"), 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", decodeOutput, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "written to %s\n", decodeOutput)
	}
	return nil
}
