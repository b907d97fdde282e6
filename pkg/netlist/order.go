package netlist

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Net ordering: power nets first (positive supplies by descending voltage,
// then grounds, then negative supplies by ascending magnitude), named nets
// in lexical order, synthetic nets by ascending index.

const (
	classPositive = iota
	classGround
	classNegative
	classNamed
	classAnon
)

type netKey struct {
	class int
	volt  float64
	anon  int
	name  string
}

func sortKey(n *Net) netKey {
	if n.IsPower {
		switch {
		case strings.HasPrefix(n.Name, "+"):
			return netKey{class: classPositive, volt: -supplyVoltage(n.Name), name: n.Name}
		case strings.HasPrefix(n.Name, "GND"):
			return netKey{class: classGround, name: n.Name}
		case strings.HasPrefix(n.Name, "-"):
			return netKey{class: classNegative, volt: supplyVoltage(n.Name), name: n.Name}
		default:
			// VCC, VDD and friends rank with the positive supplies.
			return netKey{class: classPositive, name: n.Name}
		}
	}
	if n.IsAnonymous() {
		return netKey{class: classAnon, anon: n.anon}
	}
	return netKey{class: classNamed, name: n.Name}
}

func sortNets(nets []*Net) {
	sort.SliceStable(nets, func(i, j int) bool {
		a, b := sortKey(nets[i]), sortKey(nets[j])
		if a.class != b.class {
			return a.class < b.class
		}
		if a.volt != b.volt {
			return a.volt < b.volt
		}
		if a.anon != b.anon {
			return a.anon < b.anon
		}
		return a.name < b.name
	})
}

// supplyVoltage parses the magnitude out of a supply-net name.
// Handles the KiCad spellings "+5V", "+3.3V" and "+3V3" (V as decimal
// separator); anything unparsable ranks as zero.
var supplyRe = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)V([0-9]*)$`)

func supplyVoltage(name string) float64 {
	s := strings.TrimLeft(name, "+-")

	if m := supplyRe.FindStringSubmatch(s); m != nil {
		base, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0
		}
		if m[2] != "" {
			frac, err := strconv.ParseFloat("0."+m[2], 64)
			if err == nil {
				base += frac
			}
		}
		return base
	}

	// Fall back to the digit runs, e.g. "VBUS_5V0" style names.
	var b strings.Builder
	for _, ch := range s {
		if (ch >= '0' && ch <= '9') || ch == '.' {
			b.WriteRune(ch)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}
