// Package csn reads and writes the compact schematic notation: a
// line-oriented text form carrying components, pin names, nets, and wire
// geometry. Encoding is deterministic, so equal schematics produce equal
// bytes.
package csn

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/csn/pkg/kicad/schematic"
	"github.com/OpenTraceLab/csn/pkg/netlist"
	"github.com/OpenTraceLab/csn/pkg/normalize"
)

// Header is the first line of every document.
const Header = "# CSN v1"

// Encode renders a schematic and its netlist as canonical text using the
// built-in normalization table.
func Encode(sch *schematic.Schematic, nl *netlist.Netlist) string {
	return EncodeWithTable(sch, nl, normalize.Default())
}

// EncodeWithTable is Encode with a caller-supplied normalization table.
func EncodeWithTable(sch *schematic.Schematic, nl *netlist.Netlist, tab *normalize.Table) string {
	lines := []string{Header}

	if sch.Title != "" {
		lines = append(lines, "title: "+sch.Title)
	}
	lines = append(lines, "")

	comps := make([]schematic.Component, len(nl.Components))
	copy(comps, nl.Components)
	sortByReference(comps)

	if len(comps) > 0 {
		lines = append(lines, fmt.Sprintf("components[%d]{ref,type,value,fp,x,y,w,h,a}:", len(comps)))
		for i := range comps {
			lines = append(lines, componentRow(&comps[i], tab))
		}
		lines = append(lines, "")
	}

	pinLines := pinSections(sch, comps, tab)
	if len(pinLines) > 0 {
		lines = append(lines, pinLines...)
	}

	if len(nl.Nets) > 0 {
		lines = append(lines, fmt.Sprintf("nets[%d]{name,pins}:", len(nl.Nets)))
		for _, net := range nl.Nets {
			lines = append(lines, netRow(net))
		}
		lines = append(lines, "")
	}

	wireLines := wireSection(nl)
	if len(wireLines) > 0 {
		lines = append(lines, wireLines...)
	}

	return strings.Join(lines, "\n") + "\n"
}

func componentRow(comp *schematic.Component, tab *normalize.Table) string {
	x, y, w, h := pinBounds(comp)
	return fmt.Sprintf("  %s,%s,%s,%s,%.2f,%.2f,%.2f,%.2f,%.0f",
		comp.Reference,
		tab.Type(comp.LibID),
		quoteValue(comp.Value),
		quoteValue(tab.Footprint(comp.Footprint)),
		x, y, w, h, comp.Angle)
}

// pinBounds derives the component row geometry from the pin bounding box,
// which tracks the drawn symbol better than the placement origin does.
// Components without pins fall back to the origin with zero extent.
func pinBounds(comp *schematic.Component) (x, y, w, h float64) {
	if len(comp.AbsolutePins) == 0 {
		return comp.Position.X, comp.Position.Y, 0, 0
	}
	first := true
	var minX, maxX, minY, maxY float64
	for _, pt := range comp.AbsolutePins {
		if first {
			minX, maxX, minY, maxY = pt.X, pt.X, pt.Y, pt.Y
			first = false
			continue
		}
		minX = min(minX, pt.X)
		maxX = max(maxX, pt.X)
		minY = min(minY, pt.Y)
		maxY = max(maxY, pt.Y)
	}
	return (minX + maxX) / 2, (minY + maxY) / 2, maxX - minX, maxY - minY
}

// pinSections emits a pins{REF}[N] block for every non-passive component
// whose pins carry real names. Passives are suppressed: "~" tells the
// reader nothing.
func pinSections(sch *schematic.Schematic, comps []schematic.Component, tab *normalize.Table) []string {
	var lines []string
	for i := range comps {
		comp := &comps[i]
		if tab.IsPassive(tab.Type(comp.LibID)) {
			continue
		}
		lib := sch.LibSymbolFor(comp)
		if lib == nil {
			continue
		}

		var named []schematic.Pin
		for _, pin := range lib.Pins {
			if pin.Name == "" || pin.Name == "~" {
				continue
			}
			named = append(named, pin)
		}
		if len(named) == 0 {
			continue
		}
		sort.SliceStable(named, func(a, b int) bool {
			na, _ := strconv.Atoi(named[a].Number)
			nb, _ := strconv.Atoi(named[b].Number)
			if na != nb {
				return na < nb
			}
			return named[a].Number < named[b].Number
		})

		lines = append(lines, fmt.Sprintf("pins{%s}[%d]:", comp.Reference, len(named)))
		for _, pin := range named {
			lines = append(lines, fmt.Sprintf("  %s,%s", pin.Number, quoteValue(pin.Name)))
		}
		lines = append(lines, "")
	}
	return lines
}

func netRow(net *netlist.Net) string {
	refs := make([]string, len(net.Pins))
	for i, pin := range net.Pins {
		refs[i] = pin.Ref + "." + pin.Number
	}
	joined := strings.Join(refs, ",")
	if len(refs) > 1 {
		joined = `"` + joined + `"`
	}
	return "  " + quoteValue(net.Name) + "," + joined
}

func wireSection(nl *netlist.Netlist) []string {
	total := 0
	for _, net := range nl.Nets {
		total += len(net.Wires)
	}
	if total == 0 {
		return nil
	}

	lines := []string{fmt.Sprintf("wires[%d]{net,pts}:", total)}
	for _, net := range nl.Nets {
		for _, wire := range net.Wires {
			pts := make([]string, len(wire.Points))
			for i, pt := range wire.Points {
				pts[i] = fmt.Sprintf("%.2f %.2f", pt.X, pt.Y)
			}
			lines = append(lines, fmt.Sprintf("  %s,%q", quoteValue(net.Name), strings.Join(pts, ",")))
		}
	}
	return append(lines, "")
}

// sortByReference orders components the way a BOM reads: alphabetic
// designator prefix first, then the numeric suffix as a number, so R2
// precedes R10.
func sortByReference(comps []schematic.Component) {
	sort.SliceStable(comps, func(i, j int) bool {
		ap, an := splitRef(comps[i].Reference)
		bp, bn := splitRef(comps[j].Reference)
		if ap != bp {
			return ap < bp
		}
		return an < bn
	})
}

func splitRef(ref string) (prefix string, num int) {
	i := 0
	for i < len(ref) && (ref[i] < '0' || ref[i] > '9') {
		i++
	}
	prefix = ref[:i]
	if n, err := strconv.Atoi(ref[i:]); err == nil {
		num = n
	}
	return prefix, num
}
