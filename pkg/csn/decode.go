package csn

import (
	"crypto/md5"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Decode reconstructs a KiCad schematic document from canonical text.
// Component pin placement is inferred from wire endpoints, so the result
// is a readable approximation of the original drawing, not a replica.
// Output is deterministic: equal input yields byte-equal output.
func Decode(doc *Document, lib SymbolLibrary) (string, error) {
	if doc == nil {
		return "", errors.New("nil document")
	}
	if lib == nil {
		lib = BuiltinLibrary()
	}
	d := &decoder{doc: doc, lib: lib}
	return d.run(), nil
}

// makeUUID derives a stable UUID-shaped string from a content seed.
func makeUUID(seed string) string {
	h := fmt.Sprintf("%x", md5.Sum([]byte(seed)))
	return fmt.Sprintf("%s-%s-%s-%s-%s", h[:8], h[8:12], h[12:16], h[16:20], h[20:32])
}

func escSexp(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// ff formats a coordinate without trailing zeros.
func ff(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}

func ptKey(x, y float64) string {
	return fmt.Sprintf("%.2f:%.2f", round2(x), round2(y))
}

type pinKey struct {
	ref string
	num string
}

type relPin struct {
	num  string
	x, y float64
}

type xy struct {
	x, y float64
}

type terminal struct {
	net string
	x   float64
	y   float64
	dir int
}

var powerNetNames = map[string]struct{}{
	"GND": {}, "+5V": {}, "+3V3": {}, "+3.3V": {}, "+5VD": {},
	"+12V": {}, "+24V": {}, "VCC": {}, "VDD": {}, "VSS": {},
}

func isPowerNet(name string) bool {
	if _, ok := powerNetNames[name]; ok {
		return true
	}
	return strings.HasPrefix(name, "+")
}

type decoder struct {
	doc *Document
	lib SymbolLibrary

	lines []string

	compMap    map[string]*Component
	pinPos     map[pinKey]xy
	compPins   map[string][]relPin
	compPinSet map[string]struct{}
}

func (d *decoder) emit(format string, args ...any) {
	d.lines = append(d.lines, fmt.Sprintf(format, args...))
}

func (d *decoder) run() string {
	d.compMap = make(map[string]*Component, len(d.doc.Components))
	for i := range d.doc.Components {
		d.compMap[d.doc.Components[i].Ref] = &d.doc.Components[i]
	}

	d.placePins()

	d.header()
	d.libSymbols()
	d.junctions()
	d.wires()
	d.globalLabels()
	d.componentInstances()
	d.powerInstances()
	d.emit(")")

	return strings.Join(d.lines, "\n")
}

// placePins assigns each net pin the wire endpoint of its net closest to
// the owning component's center, then derives symbol-relative pin
// positions from those.
func (d *decoder) placePins() {
	netPoints := make(map[string][]xy)
	for _, w := range d.doc.Wires {
		for _, pt := range w.Points {
			netPoints[w.Net] = append(netPoints[w.Net], xy{pt.X, pt.Y})
		}
	}

	d.pinPos = make(map[pinKey]xy)
	d.compPins = make(map[string][]relPin)
	d.compPinSet = make(map[string]struct{})

	for _, net := range d.doc.Nets {
		for _, pin := range net.Pins {
			comp, ok := d.compMap[pin.Ref]
			if !ok {
				continue
			}
			key := pinKey{pin.Ref, pin.Number}
			if _, done := d.pinPos[key]; done {
				continue
			}
			best, found := xy{}, false
			bestDist := 0.0
			for _, pt := range netPoints[net.Name] {
				dx, dy := pt.x-comp.X, pt.y-comp.Y
				dist := dx*dx + dy*dy
				if !found || dist < bestDist {
					best, bestDist, found = pt, dist, true
				}
			}
			if !found {
				continue
			}
			d.pinPos[key] = best
			d.compPins[pin.Ref] = append(d.compPins[pin.Ref],
				relPin{num: pin.Number, x: best.x - comp.X, y: best.y - comp.Y})
			d.compPinSet[ptKey(best.x, best.y)] = struct{}{}
		}
	}
}

func (d *decoder) header() {
	d.emit("(kicad_sch")
	d.emit("  (version 20231120)")
	d.emit(`  (generator "csn")`)
	d.emit(`  (generator_version "1.0")`)
	d.emit(`  (uuid "%s")`, makeUUID("doc_"+d.doc.Title))
	d.emit(`  (paper "A4")`)
	d.emit("")
	d.emit("  (title_block")
	d.emit(`    (title "%s")`, escSexp(d.doc.Title))
	d.emit("  )")
	d.emit("")
}

func (d *decoder) libSymbols() {
	d.emit("  (lib_symbols")

	emitted := make(map[string]struct{})
	for i := range d.doc.Components {
		comp := &d.doc.Components[i]
		libID := d.libID(comp.Type)
		if _, done := emitted[libID]; done {
			continue
		}
		emitted[libID] = struct{}{}

		if pd, ok := d.lib.Lookup(comp.Type); ok {
			d.partDef(pd)
		} else {
			d.genericSymbol(comp)
		}
	}

	for _, name := range d.powerTypes() {
		d.powerSymbolDef(name)
	}

	d.emit("  )")
	d.emit("")
}

func (d *decoder) libID(typeCode string) string {
	if pd, ok := d.lib.Lookup(typeCode); ok {
		return pd.LibID
	}
	return "csn:" + typeCode
}

func (d *decoder) partDef(pd *PartDef) {
	name := pd.LibID[strings.Index(pd.LibID, ":")+1:]
	d.emit(`    (symbol "%s"`, pd.LibID)
	d.emit("      (pin_numbers (hide yes))")
	d.emit("      (pin_names (offset 0))")
	d.emit("      (exclude_from_sim no)")
	d.emit("      (in_bom yes)")
	d.emit("      (on_board yes)")
	d.emit(`      (property "Reference" "%s"`, name[:1])
	d.emit("        (at 2.032 0 90)")
	d.emit("        (effects (font (size 1.27 1.27))))")
	d.emit(`      (property "Value" "%s"`, name)
	d.emit("        (at 0 0 90)")
	d.emit("        (effects (font (size 1.27 1.27))))")
	d.emit(`      (property "Footprint" ""`)
	d.emit("        (at -1.778 0 90)")
	d.emit("        (effects (font (size 1.27 1.27)) (hide yes)))")
	d.emit(`      (property "Datasheet" "~"`)
	d.emit("        (at 0 0 0)")
	d.emit("        (effects (font (size 1.27 1.27)) (hide yes)))")
	if pd.Graphic != "" {
		d.lines = append(d.lines, pd.Graphic)
	}
	d.emit(`      (symbol "%s_1_1"`, name)
	for _, pin := range pd.Pins {
		d.emit("        (pin %s line", pin.Electric)
		d.emit("          (at %s %s %d)", ff(pin.X), ff(pin.Y), pin.AngleDeg)
		d.emit("          (length %s)", ff(pin.Length))
		d.emit(`          (name "%s" (effects (font (size 1.27 1.27))))`, escSexp(pin.Name))
		d.emit(`          (number "%s" (effects (font (size 1.27 1.27)))))`, pin.Number)
	}
	d.emit("      )")
	d.emit("    )")
}

// genericSymbol draws a rectangle body with pins at their inferred
// relative positions, merged across all instances of the type.
func (d *decoder) genericSymbol(comp *Component) {
	var pins []relPin
	seen := make(map[string]struct{})
	for i := range d.doc.Components {
		c := &d.doc.Components[i]
		if c.Type != comp.Type {
			continue
		}
		for _, p := range d.compPins[c.Ref] {
			if _, dup := seen[p.num]; dup {
				continue
			}
			seen[p.num] = struct{}{}
			pins = append(pins, p)
		}
	}

	halfW, halfH := comp.W/2, comp.H/2
	if halfW <= 0 || halfH <= 0 {
		halfW, halfH = 5.08, 5.08
		for _, p := range pins {
			halfW = max(halfW, abs(p.x)+2.54)
			halfH = max(halfH, abs(p.y)+2.54)
		}
	}

	names := make(map[string]string)
	for _, def := range d.doc.Pins[comp.Ref] {
		names[def.Number] = def.Name
	}

	d.emit(`    (symbol "csn:%s"`, comp.Type)
	d.emit("      (exclude_from_sim no)")
	d.emit("      (in_bom yes)")
	d.emit("      (on_board yes)")
	d.emit(`      (property "Reference" "U"`)
	d.emit("        (at %s %s 0)", ff(halfW+2), ff(-halfH))
	d.emit("        (effects (font (size 1.27 1.27)) (justify left)))")
	d.emit(`      (property "Value" "%s"`, escSexp(comp.Type))
	d.emit("        (at %s %s 0)", ff(halfW+2), ff(-halfH+2.54))
	d.emit("        (effects (font (size 1.27 1.27)) (justify left)))")
	d.emit(`      (property "Footprint" ""`)
	d.emit("        (at 0 0 0)")
	d.emit("        (effects (font (size 1.27 1.27)) (hide yes)))")
	d.emit(`      (property "Datasheet" "~"`)
	d.emit("        (at 0 0 0)")
	d.emit("        (effects (font (size 1.27 1.27)) (hide yes)))")
	d.emit(`      (symbol "%s_1_1"`, comp.Type)
	d.emit("        (rectangle")
	d.emit("          (start %s %s)", ff(-halfW+5.08), ff(-halfH))
	d.emit("          (end %s %s)", ff(halfW-5.08), ff(halfH))
	d.emit("          (stroke (width 0.254) (type default))")
	d.emit("          (fill (type background)))")

	for _, p := range pins {
		dir, length := pinFacing(p, halfW, halfH)
		name := names[p.num]
		if name == "" {
			name = "~"
		}
		d.emit("        (pin passive line")
		d.emit("          (at %s %s %d)", ff(p.x), ff(p.y), dir)
		d.emit("          (length %s)", ff(length))
		d.emit(`          (name "%s" (effects (font (size 1.27 1.27))))`, escSexp(name))
		d.emit(`          (number "%s" (effects (font (size 1.27 1.27)))))`, p.num)
	}
	d.emit("      )")
	d.emit("    )")
}

// pinFacing orients a generated pin toward the symbol body and sizes its
// length to reach it.
func pinFacing(p relPin, halfW, halfH float64) (dir int, length float64) {
	switch {
	case p.x < -halfW+5.08:
		dir, length = 0, (-halfW+5.08)-p.x
	case p.x > halfW-5.08:
		dir, length = 180, p.x-(halfW-5.08)
	case p.y < -halfH:
		dir, length = 90, -halfH-p.y
	default:
		dir, length = 270, p.y-halfH
	}
	return dir, max(abs(length), 2.54)
}

func (d *decoder) junctions() {
	count := make(map[string]int)
	coord := make(map[string]xy)
	var order []string
	for _, w := range d.doc.Wires {
		for _, pt := range w.Points {
			key := ptKey(pt.X, pt.Y)
			if count[key] == 0 {
				order = append(order, key)
				coord[key] = xy{round2(pt.X), round2(pt.Y)}
			}
			count[key]++
		}
	}

	i := 0
	for _, key := range order {
		if count[key] < 3 {
			continue
		}
		pt := coord[key]
		d.emit("  (junction")
		d.emit("    (at %s %s)", ff(pt.x), ff(pt.y))
		d.emit("    (diameter 0)")
		d.emit("    (color 0 0 0 0)")
		d.emit(`    (uuid "%s")`, makeUUID(fmt.Sprintf("junction_%d_%s", i, key)))
		d.emit("  )")
		i++
	}
}

func (d *decoder) wires() {
	for i, w := range d.doc.Wires {
		if len(w.Points) < 2 {
			continue
		}
		for j := 0; j+1 < len(w.Points); j++ {
			p1, p2 := w.Points[j], w.Points[j+1]
			d.emit("  (wire")
			d.emit("    (pts")
			d.emit("      (xy %s %s) (xy %s %s)", ff(p1.X), ff(p1.Y), ff(p2.X), ff(p2.Y))
			d.emit("    )")
			d.emit("    (stroke (width 0) (type default))")
			d.emit(`    (uuid "%s")`, makeUUID(fmt.Sprintf("wire_%d_%d", i, j)))
			d.emit("  )")
		}
	}
}

// netTerminals finds degree-one wire vertices of a net that sit at no
// component pin, with the direction the wire leaves them.
func (d *decoder) netTerminals(netName string) []terminal {
	var netWires []Wire
	for _, w := range d.doc.Wires {
		if w.Net == netName {
			netWires = append(netWires, w)
		}
	}

	count := make(map[string]int)
	coord := make(map[string]xy)
	var order []string
	for _, w := range netWires {
		for _, pt := range w.Points {
			key := ptKey(pt.X, pt.Y)
			if count[key] == 0 {
				order = append(order, key)
				coord[key] = xy{pt.X, pt.Y}
			}
			count[key]++
		}
	}

	var terms []terminal
	for _, key := range order {
		if count[key] != 1 {
			continue
		}
		if _, atPin := d.compPinSet[key]; atPin {
			continue
		}
		pt := coord[key]
		terms = append(terms, terminal{
			net: netName,
			x:   pt.x,
			y:   pt.y,
			dir: wireDirectionAt(netWires, pt.x, pt.y),
		})
	}
	return terms
}

// wireDirectionAt reports the axis direction a wire leaves the given
// vertex: 0 right, 90 down, 180 left, 270 up.
func wireDirectionAt(wires []Wire, px, py float64) int {
	for _, w := range wires {
		pts := w.Points
		for i, pt := range pts {
			if abs(pt.X-px) >= 0.01 || abs(pt.Y-py) >= 0.01 {
				continue
			}
			var ox, oy float64
			switch {
			case i == 0 && len(pts) > 1:
				ox, oy = pts[1].X, pts[1].Y
			case i == len(pts)-1 && len(pts) > 1:
				ox, oy = pts[len(pts)-2].X, pts[len(pts)-2].Y
			default:
				continue
			}
			dx, dy := ox-px, oy-py
			if abs(dx) > abs(dy) {
				if dx > 0 {
					return 0
				}
				return 180
			}
			if dy > 0 {
				return 90
			}
			return 270
		}
	}
	return 0
}

func (d *decoder) powerTerminals() []terminal {
	var terms []terminal
	for _, net := range d.doc.Nets {
		if !isPowerNet(net.Name) {
			continue
		}
		terms = append(terms, d.netTerminals(net.Name)...)
	}
	return terms
}

func (d *decoder) powerTypes() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, t := range d.powerTerminals() {
		if _, dup := seen[t.net]; dup {
			continue
		}
		seen[t.net] = struct{}{}
		names = append(names, t.net)
	}
	sort.Strings(names)
	return names
}

func (d *decoder) globalLabels() {
	i := 0
	for _, net := range d.doc.Nets {
		// Power nets become symbols instead; bare N-prefixed names are
		// synthetic and carry no label.
		if isPowerNet(net.Name) || strings.HasPrefix(net.Name, "N") {
			continue
		}
		for _, t := range d.netTerminals(net.Name) {
			angle := (t.dir + 180) % 360
			justify := "left"
			if angle == 180 {
				justify = "right"
			}
			d.emit("  (global_label")
			d.emit(`    "%s"`, escSexp(net.Name))
			d.emit("    (shape input)")
			d.emit("    (at %s %s %d)", ff(t.x), ff(t.y), angle)
			d.emit("    (effects")
			d.emit("      (font (size 1.27 1.27))")
			d.emit("      (justify %s))", justify)
			d.emit(`    (uuid "%s")`, makeUUID(fmt.Sprintf("label_%d_%s", i, net.Name)))
			d.emit(`    (property "Intersheetrefs" "${INTERSHEET_REFS}"`)
			d.emit("      (at %s %s 0)", ff(t.x), ff(t.y))
			d.emit("      (effects (font (size 1.27 1.27)) (hide yes)))")
			d.emit("  )")
			i++
		}
	}
}

func (d *decoder) componentInstances() {
	for i := range d.doc.Components {
		comp := &d.doc.Components[i]
		d.emit("  (symbol")
		d.emit(`    (lib_id "%s")`, d.libID(comp.Type))
		d.emit("    (at %s %s %d)", ff(comp.X), ff(comp.Y), int(comp.A))
		d.emit("    (unit 1)")
		d.emit("    (exclude_from_sim no)")
		d.emit("    (in_bom yes)")
		d.emit("    (on_board yes)")
		d.emit("    (dnp no)")
		d.emit(`    (uuid "%s")`, makeUUID(fmt.Sprintf("comp_%d_%s", i, comp.Ref)))
		d.emit(`    (property "Reference" "%s"`, escSexp(comp.Ref))
		d.emit("      (at %s %s 0)", ff(comp.X), ff(comp.Y-5))
		d.emit("      (effects (font (size 1.27 1.27))))")
		d.emit(`    (property "Value" "%s"`, escSexp(comp.Value))
		d.emit("      (at %s %s 0)", ff(comp.X), ff(comp.Y+5))
		d.emit("      (effects (font (size 1.27 1.27))))")
		d.emit(`    (property "Footprint" "%s"`, escSexp(comp.Footprint))
		d.emit("      (at %s %s 0)", ff(comp.X), ff(comp.Y))
		d.emit("      (effects (font (size 1.27 1.27)) (hide yes)))")
		d.emit(`    (property "Datasheet" "~"`)
		d.emit("      (at %s %s 0)", ff(comp.X), ff(comp.Y))
		d.emit("      (effects (font (size 1.27 1.27)) (hide yes)))")
		for _, p := range d.compPins[comp.Ref] {
			d.emit(`    (pin "%s"`, p.num)
			d.emit(`      (uuid "%s")`, makeUUID(fmt.Sprintf("pin_%s_%s", comp.Ref, p.num)))
			d.emit("    )")
		}
		d.emit("    (instances")
		d.emit(`      (project ""`)
		d.emit(`        (path ""`)
		d.emit(`          (reference "%s")`, escSexp(comp.Ref))
		d.emit("          (unit 1))))")
		d.emit("  )")
	}
}

func (d *decoder) powerInstances() {
	for i, t := range d.powerTerminals() {
		// Rotate the symbol so its pin meets the wire.
		var angle int
		switch t.dir {
		case 0:
			angle = 90
		case 180:
			angle = 270
		case 90:
			angle = 0
		default:
			angle = 180
		}
		ref := fmt.Sprintf("#PWR%02d", i+1)

		d.emit("  (symbol")
		d.emit(`    (lib_id "power:%s")`, t.net)
		d.emit("    (at %s %s %d)", ff(t.x), ff(t.y), angle)
		d.emit("    (unit 1)")
		d.emit("    (exclude_from_sim no)")
		d.emit("    (in_bom yes)")
		d.emit("    (on_board yes)")
		d.emit("    (dnp no)")
		d.emit(`    (uuid "%s")`, makeUUID(fmt.Sprintf("pwr_%d_%s", i, t.net)))
		d.emit(`    (property "Reference" "%s"`, ref)
		d.emit("      (at %s %s 0)", ff(t.x), ff(t.y))
		d.emit("      (effects (font (size 1.27 1.27)) (hide yes)))")
		d.emit(`    (property "Value" "%s"`, escSexp(t.net))
		d.emit("      (at %s %s 0)", ff(t.x), ff(t.y))
		d.emit("      (effects (font (size 1.27 1.27))))")
		d.emit(`    (property "Footprint" ""`)
		d.emit("      (at %s %s 0)", ff(t.x), ff(t.y))
		d.emit("      (effects (font (size 1.27 1.27)) (hide yes)))")
		d.emit(`    (property "Datasheet" ""`)
		d.emit("      (at %s %s 0)", ff(t.x), ff(t.y))
		d.emit("      (effects (font (size 1.27 1.27)) (hide yes)))")
		d.emit(`    (pin "1"`)
		d.emit(`      (uuid "%s")`, makeUUID(fmt.Sprintf("pwr_pin_%d_%s", i, t.net)))
		d.emit("    )")
		d.emit("    (instances")
		d.emit(`      (project ""`)
		d.emit(`        (path ""`)
		d.emit(`          (reference "%s")`, ref)
		d.emit("          (unit 1))))")
		d.emit("  )")
	}
}

func (d *decoder) powerSymbolDef(name string) {
	isGnd := name == "GND" || name == "VSS"

	d.emit(`    (symbol "power:%s"`, name)
	d.emit("      (power)")
	d.emit("      (pin_numbers (hide yes))")
	d.emit("      (pin_names (offset 0) (hide yes))")
	d.emit("      (exclude_from_sim no)")
	d.emit("      (in_bom yes)")
	d.emit("      (on_board yes)")
	d.emit(`      (property "Reference" "#PWR"`)
	d.emit("        (at 0 -6.35 0)")
	d.emit("        (effects (font (size 1.27 1.27)) (hide yes)))")
	d.emit(`      (property "Value" "%s"`, escSexp(name))
	if isGnd {
		d.emit("        (at 0 -3.81 0)")
	} else {
		d.emit("        (at 0 3.556 0)")
	}
	d.emit("        (effects (font (size 1.27 1.27))))")
	d.emit(`      (property "Footprint" ""`)
	d.emit("        (at 0 0 0)")
	d.emit("        (effects (font (size 1.27 1.27)) (hide yes)))")
	d.emit(`      (property "Datasheet" ""`)
	d.emit("        (at 0 0 0)")
	d.emit("        (effects (font (size 1.27 1.27)) (hide yes)))")

	d.emit(`      (symbol "%s_0_1"`, name)
	if isGnd {
		d.emit("        (polyline")
		d.emit("          (pts (xy 0 0) (xy 0 -1.27) (xy 1.27 -1.27) (xy 0 -2.54) (xy -1.27 -1.27) (xy 0 -1.27))")
		d.emit("          (stroke (width 0) (type default))")
		d.emit("          (fill (type none))))")
	} else {
		d.emit("        (polyline")
		d.emit("          (pts (xy -0.762 1.27) (xy 0 2.54))")
		d.emit("          (stroke (width 0) (type default))")
		d.emit("          (fill (type none)))")
		d.emit("        (polyline")
		d.emit("          (pts (xy 0 2.54) (xy 0.762 1.27))")
		d.emit("          (stroke (width 0) (type default))")
		d.emit("          (fill (type none)))")
		d.emit("        (polyline")
		d.emit("          (pts (xy 0 0) (xy 0 2.54))")
		d.emit("          (stroke (width 0) (type default))")
		d.emit("          (fill (type none))))")
	}

	d.emit(`      (symbol "%s_1_1"`, name)
	d.emit("        (pin power_in line")
	if isGnd {
		d.emit("          (at 0 0 270)")
	} else {
		d.emit("          (at 0 0 90)")
	}
	d.emit("          (length 0)")
	d.emit(`          (name "~" (effects (font (size 1.27 1.27))))`)
	d.emit(`          (number "1" (effects (font (size 1.27 1.27))))))`)
	d.emit("    )")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
