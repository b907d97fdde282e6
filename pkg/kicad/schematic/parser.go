package schematic

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/csn/pkg/kicad/sexp"
	"github.com/OpenTraceLab/csn/pkg/kicad/sexp/kicadsexp"
)

// ParseFile reads and parses a KiCad schematic file
func ParseFile(filename string) (*Schematic, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad schematic from an io.Reader.
//
// Structural problems (unbalanced brackets, wrong root tag) abort the
// parse. Individual entities missing required geometry are dropped and
// parsing continues.
func Parse(r io.Reader) (*Schematic, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	root := sexps[0]

	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}
	if rootName != "kicad_sch" {
		return nil, fmt.Errorf("not a KiCad schematic file: expected 'kicad_sch', got '%s'", rootName)
	}

	sch := &Schematic{
		LibSymbols: make(map[string]*LibSymbol),
	}

	// Title block
	if tb, found := sexp.FindNode(root, "title_block"); found {
		if title, ok := sexp.GetValue(tb, "title"); ok {
			sch.Title = title
		}
	}

	// Library part definitions
	if libs, found := sexp.FindNode(root, "lib_symbols"); found {
		for _, symNode := range sexp.FindAllNodes(libs, "symbol") {
			if lib := parseLibSymbol(symNode); lib != nil {
				sch.LibSymbols[lib.ID] = lib
			}
		}
	}

	// Component instances
	for _, symNode := range sexp.FindAllNodes(root, "symbol") {
		if comp := parseComponent(symNode, sch.LibSymbols); comp != nil {
			sch.Components = append(sch.Components, *comp)
		}
	}

	// Wires
	for _, wireNode := range sexp.FindAllNodes(root, "wire") {
		if wire := parseWire(wireNode); wire != nil {
			sch.Wires = append(sch.Wires, *wire)
		}
	}

	// Junctions
	for _, juncNode := range sexp.FindAllNodes(root, "junction") {
		if junc := parseJunction(juncNode); junc != nil {
			sch.Junctions = append(sch.Junctions, *junc)
		}
	}

	// Labels, all three kinds
	for _, labelNode := range sexp.FindAllNodes(root, "label") {
		if label := parseLabel(labelNode, LabelLocal); label != nil {
			sch.Labels = append(sch.Labels, *label)
		}
	}
	for _, labelNode := range sexp.FindAllNodes(root, "global_label") {
		if label := parseLabel(labelNode, LabelGlobal); label != nil {
			sch.Labels = append(sch.Labels, *label)
		}
	}
	for _, labelNode := range sexp.FindAllNodes(root, "hierarchical_label") {
		if label := parseLabel(labelNode, LabelHierarchical); label != nil {
			sch.Labels = append(sch.Labels, *label)
		}
	}

	return sch, nil
}

// parseLibSymbol parses one lib_symbols entry. Pins live in nested
// per-unit symbol sub-blocks.
func parseLibSymbol(node kicadsexp.Sexp) *LibSymbol {
	id, err := sexp.GetString(node, 1)
	if err != nil {
		return nil
	}

	lib := &LibSymbol{
		ID:      id,
		IsPower: sexp.HasNode(node, "power"),
	}

	for _, unitNode := range sexp.FindAllNodes(node, "symbol") {
		for _, pinNode := range sexp.FindAllNodes(unitNode, "pin") {
			if pin := parsePin(pinNode); pin != nil {
				lib.Pins = append(lib.Pins, *pin)
			}
		}
	}

	return lib
}

// parsePin parses a library pin definition:
// (pin TYPE STYLE (at X Y ANGLE) (length L) (name "NAME" ...) (number "NUM" ...))
func parsePin(node kicadsexp.Sexp) *Pin {
	typeStr, err := sexp.GetString(node, 1)
	if err != nil {
		typeStr = "passive"
	}

	at, found := sexp.FindNode(node, "at")
	if !found {
		return nil
	}
	x, errX := sexp.GetFloat(at, 1)
	y, errY := sexp.GetFloat(at, 2)
	angle, errA := sexp.GetFloat(at, 3)
	if errX != nil || errY != nil || errA != nil {
		return nil
	}

	pin := &Pin{
		X:     x,
		Y:     y,
		Angle: angle,
		Type:  ParsePinType(typeStr),
	}

	if name, ok := sexp.GetValue(node, "name"); ok {
		pin.Name = name
	}
	if number, ok := sexp.GetValue(node, "number"); ok {
		pin.Number = number
	}

	return pin
}

// parseComponent parses a placed symbol instance. Instances missing
// lib_id or position are dropped.
func parseComponent(node kicadsexp.Sexp, libs map[string]*LibSymbol) *Component {
	libID, ok := sexp.GetValue(node, "lib_id")
	if !ok {
		return nil
	}

	at, found := sexp.FindNode(node, "at")
	if !found {
		return nil
	}
	x, errX := sexp.GetFloat(at, 1)
	y, errY := sexp.GetFloat(at, 2)
	if errX != nil || errY != nil {
		return nil
	}
	angle, err := sexp.GetFloat(at, 3)
	if err != nil {
		angle = 0
	}

	comp := &Component{
		LibID:        libID,
		Position:     Point{X: x, Y: y},
		Angle:        angle,
		Unit:         1,
		AbsolutePins: make(map[string]Point),
	}

	if mirror, ok := sexp.GetValue(node, "mirror"); ok {
		comp.Mirror = ParseMirror(mirror)
	}
	if unitNode, found := sexp.FindNode(node, "unit"); found {
		if unit, err := sexp.GetInt(unitNode, 1); err == nil {
			comp.Unit = unit
		}
	}
	if dnp, ok := sexp.GetValue(node, "dnp"); ok {
		comp.DNP = dnp == "yes"
	}

	for _, propNode := range sexp.FindAllNodes(node, "property") {
		key, errK := sexp.GetString(propNode, 1)
		val, errV := sexp.GetString(propNode, 2)
		if errK != nil || errV != nil {
			continue
		}
		switch key {
		case "Reference":
			comp.Reference = val
		case "Value":
			comp.Value = val
		case "Footprint":
			comp.Footprint = val
		}
	}

	// Resolve the library definition: a lib_name rename wins over lib_id.
	comp.LibKey = libID
	if libName, ok := sexp.GetValue(node, "lib_name"); ok {
		if _, exists := libs[libName]; exists {
			comp.LibKey = libName
		}
	}

	if lib, exists := libs[comp.LibKey]; exists {
		for _, pin := range lib.Pins {
			comp.AbsolutePins[pin.Number] = TransformPin(
				pin.X, pin.Y, x, y, angle, comp.Mirror)
		}
	}

	return comp
}

// parseWire parses a wire polyline; fewer than 2 points is not a wire.
func parseWire(node kicadsexp.Sexp) *Wire {
	pts, found := sexp.FindNode(node, "pts")
	if !found {
		return nil
	}

	var points []Point
	for _, xyNode := range sexp.FindAllNodes(pts, "xy") {
		x, errX := sexp.GetFloat(xyNode, 1)
		y, errY := sexp.GetFloat(xyNode, 2)
		if errX != nil || errY != nil {
			continue
		}
		points = append(points, Point{X: x, Y: y})
	}

	if len(points) < 2 {
		return nil
	}
	return &Wire{Points: points}
}

func parseJunction(node kicadsexp.Sexp) *Junction {
	at, found := sexp.FindNode(node, "at")
	if !found {
		return nil
	}
	x, errX := sexp.GetFloat(at, 1)
	y, errY := sexp.GetFloat(at, 2)
	if errX != nil || errY != nil {
		return nil
	}
	return &Junction{Position: Point{X: x, Y: y}}
}

func parseLabel(node kicadsexp.Sexp, kind LabelKind) *Label {
	name, err := sexp.GetString(node, 1)
	if err != nil {
		return nil
	}

	at, found := sexp.FindNode(node, "at")
	if !found {
		return nil
	}
	x, errX := sexp.GetFloat(at, 1)
	y, errY := sexp.GetFloat(at, 2)
	if errX != nil || errY != nil {
		return nil
	}
	angle, err := sexp.GetFloat(at, 3)
	if err != nil {
		angle = 0
	}

	return &Label{
		Name:     name,
		Position: Point{X: x, Y: y},
		Angle:    angle,
		Kind:     kind,
	}
}
