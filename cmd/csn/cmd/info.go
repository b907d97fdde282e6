package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/csn/pkg/kicad/schematic"
	"github.com/OpenTraceLab/csn/pkg/netlist"
	"github.com/OpenTraceLab/csn/pkg/normalize"
)

var infoCmd = &cobra.Command{
	Use:   "info <schematic_file>",
	Short: "Show schematic components and nets",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	sch, err := schematic.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing schematic: %w", err)
	}

	fmt.Printf("Schematic: %s\n", args[0])
	if sch.Title != "" {
		fmt.Printf("Title: %s\n", sch.Title)
	}
	fmt.Println()

	nl := netlist.Analyze(sch)
	tab := normalize.Default()

	fmt.Printf("Components: %d\n", len(nl.Components))
	for i := range nl.Components {
		comp := &nl.Components[i]
		fmt.Printf("  %-8s %-10s %s\n", comp.Reference, tab.Type(comp.LibID), comp.Value)
	}
	fmt.Println()

	fmt.Printf("Nets: %d\n", len(nl.Nets))
	for _, net := range nl.Nets {
		pins := make([]string, len(net.Pins))
		for i, pin := range net.Pins {
			pins[i] = pin.Ref + "." + pin.Number
		}
		fmt.Printf("  %-12s %s\n", net.Name, strings.Join(pins, ", "))
	}

	if verbose {
		fmt.Println()
		fmt.Printf("Wires: %d\n", len(sch.Wires))
		fmt.Printf("Junctions: %d\n", len(sch.Junctions))
		fmt.Printf("Labels: %d\n", len(sch.Labels))
	}
	return nil
}
