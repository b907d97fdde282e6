// Package netlist derives electrical connectivity from schematic wire
// geometry. Wire segments are grouped into clusters with a union-find over
// segment indices, pins and labels attach to clusters by coordinate
// tolerance, and the resulting nets get fully deterministic names and
// ordering.
package netlist

import (
	"sort"
	"strconv"

	"github.com/OpenTraceLab/csn/pkg/kicad/schematic"
)

// PinRef identifies one component pin inside a net.
type PinRef struct {
	Ref    string
	Number string
	Name   string
}

// Net is a maximal set of electrically connected pins.
type Net struct {
	Name    string
	Pins    []PinRef
	Wires   []schematic.Wire
	IsPower bool

	// anon is the 1-based synthetic index for unlabeled nets, 0 otherwise.
	// Ordering classifies nets by origin, not by name spelling, so a label
	// that happens to read "N7" still sorts with the named nets.
	anon int
}

// IsAnonymous reports whether the net name was synthesized.
func (n *Net) IsAnonymous() bool { return n.anon > 0 }

// Netlist is the connectivity extracted from one schematic. Components
// excludes power pseudo-symbols.
type Netlist struct {
	Nets       []*Net
	Components []schematic.Component
}

// Analyze derives a netlist with default settings.
func Analyze(sch *schematic.Schematic) *Netlist {
	return AnalyzeWithConfig(sch, DefaultConfig())
}

// AnalyzeWithConfig derives a netlist from wire geometry, pin positions,
// and labels.
func AnalyzeWithConfig(sch *schematic.Schematic, cfg *Config) *Netlist {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Validate()

	segs := sch.Wires
	uf := newUnionFind(len(segs))

	// Vertices that land on the same fixed-precision grid cell connect
	// their segments.
	buckets := make(map[string][]int)
	for i, w := range segs {
		for _, pt := range w.Points {
			key := pt.Key(cfg.HashDecimals)
			buckets[key] = append(buckets[key], i)
		}
	}
	for _, idxs := range buckets {
		for _, j := range idxs[1:] {
			uf.union(idxs[0], j)
		}
	}

	// Safety net for coordinates that are close but hash to different
	// cells. Quadratic in segment count; fine for hand-drawn schematics.
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			if uf.find(i) == uf.find(j) {
				continue
			}
			if segmentsTouch(&segs[i], &segs[j], cfg.Tolerance) {
				uf.union(i, j)
			}
		}
	}

	// Clusters in first-appearance order, which is min-segment-index order.
	// This pins down synthetic net numbering independent of map iteration.
	var clusterRoots []int
	clusterSegs := make(map[int][]int)
	for i := range segs {
		root := uf.find(i)
		if _, seen := clusterSegs[root]; !seen {
			clusterRoots = append(clusterRoots, root)
		}
		clusterSegs[root] = append(clusterSegs[root], i)
	}

	sites := collectPinSites(sch)

	var nets []*Net
	anonCounter := 0

	for _, root := range clusterRoots {
		var points []schematic.Point
		for _, segIdx := range clusterSegs[root] {
			points = append(points, segs[segIdx].Points...)
		}

		var pins []PinRef
		var name string
		named := false
		isPower := false

		for _, pt := range points {
			for _, site := range sites {
				if pt.CloseTo(site.pos, cfg.Tolerance) {
					pins = append(pins, site.ref)
				}
			}
			for _, label := range sch.Labels {
				if pt.CloseTo(label.Position, cfg.Tolerance) {
					name = label.Name
					named = true
				}
			}
		}

		// A touching power symbol names the net after its value, and its
		// own pin is excluded: power symbols declare a net, they are not
		// connection endpoints.
		for _, pin := range pins {
			if site := findSite(sites, pin); site != nil && site.power {
				name = site.value
				named = true
				isPower = true
				break
			}
		}
		pins = excludePowerPins(sites, pins)

		if len(pins) == 0 {
			continue
		}

		net := &Net{IsPower: isPower}
		if named {
			net.Name = name
		} else {
			anonCounter++
			net.anon = anonCounter
			net.Name = cfg.AnonPrefix + strconv.Itoa(anonCounter)
		}

		net.Pins = dedupePins(pins)
		for _, segIdx := range clusterSegs[root] {
			net.Wires = append(net.Wires, segs[segIdx])
		}

		nets = append(nets, net)
	}

	nets = mergeByName(nets)
	sortNets(nets)
	for _, net := range nets {
		sortPins(net.Pins)
	}

	return &Netlist{
		Nets:       nets,
		Components: realComponents(sch),
	}
}

// pinSite is a pin's absolute location plus what connects there.
type pinSite struct {
	pos   schematic.Point
	ref   PinRef
	power bool
	value string
}

// collectPinSites flattens every component pin into a deterministic list:
// components in document order, pins by ascending number.
func collectPinSites(sch *schematic.Schematic) []pinSite {
	var sites []pinSite
	for i := range sch.Components {
		comp := &sch.Components[i]
		lib := sch.LibSymbolFor(comp)

		pinNames := make(map[string]string)
		isPower := false
		if lib != nil {
			isPower = lib.IsPower
			for _, pin := range lib.Pins {
				pinNames[pin.Number] = pin.Name
			}
		}

		numbers := make([]string, 0, len(comp.AbsolutePins))
		for num := range comp.AbsolutePins {
			numbers = append(numbers, num)
		}
		sort.Slice(numbers, func(a, b int) bool {
			na, nb := pinNumValue(numbers[a]), pinNumValue(numbers[b])
			if na != nb {
				return na < nb
			}
			return numbers[a] < numbers[b]
		})

		for _, num := range numbers {
			sites = append(sites, pinSite{
				pos: comp.AbsolutePins[num],
				ref: PinRef{
					Ref:    comp.Reference,
					Number: num,
					Name:   pinNames[num],
				},
				power: isPower,
				value: comp.Value,
			})
		}
	}
	return sites
}

func findSite(sites []pinSite, pin PinRef) *pinSite {
	for i := range sites {
		if sites[i].ref == pin {
			return &sites[i]
		}
	}
	return nil
}

func excludePowerPins(sites []pinSite, pins []PinRef) []PinRef {
	var out []PinRef
	for _, pin := range pins {
		if site := findSite(sites, pin); site != nil && site.power {
			continue
		}
		out = append(out, pin)
	}
	return out
}

func dedupePins(pins []PinRef) []PinRef {
	seen := make(map[PinRef]struct{}, len(pins))
	var out []PinRef
	for _, pin := range pins {
		if _, dup := seen[pin]; dup {
			continue
		}
		seen[pin] = struct{}{}
		out = append(out, pin)
	}
	return out
}

// segmentsTouch reports whether any vertex of a lies within tol of any
// vertex of b.
func segmentsTouch(a, b *schematic.Wire, tol float64) bool {
	for _, pa := range a.Points {
		for _, pb := range b.Points {
			if pa.CloseTo(pb, tol) {
				return true
			}
		}
	}
	return false
}

// mergeByName folds nets that resolved to the same name: distinct wire
// clusters can be tied together by a shared global label. First occurrence
// keeps its position.
func mergeByName(nets []*Net) []*Net {
	index := make(map[string]*Net)
	var out []*Net
	for _, net := range nets {
		existing, ok := index[net.Name]
		if !ok {
			index[net.Name] = net
			out = append(out, net)
			continue
		}
		existing.Pins = dedupePins(append(existing.Pins, net.Pins...))
		existing.Wires = append(existing.Wires, net.Wires...)
		existing.IsPower = existing.IsPower || net.IsPower
		if existing.anon == 0 {
			existing.anon = net.anon
		}
	}
	return out
}

func realComponents(sch *schematic.Schematic) []schematic.Component {
	var out []schematic.Component
	for i := range sch.Components {
		comp := &sch.Components[i]
		if lib := sch.LibSymbolFor(comp); lib != nil && lib.IsPower {
			continue
		}
		out = append(out, *comp)
	}
	return out
}

func pinNumValue(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func sortPins(pins []PinRef) {
	sort.SliceStable(pins, func(i, j int) bool {
		a, b := pins[i], pins[j]
		if a.Ref != b.Ref {
			return a.Ref < b.Ref
		}
		an, bn := pinNumValue(a.Number), pinNumValue(b.Number)
		if an != bn {
			return an < bn
		}
		return a.Name < b.Name
	})
}
