// Package schematic builds a typed model from KiCad schematic files
// (.kicad_sch): library part definitions, placed component instances with
// absolute pin coordinates, wire polylines, junctions, and labels.
package schematic

// LabelKind classifies a net label.
type LabelKind int

const (
	LabelLocal LabelKind = iota
	LabelGlobal
	LabelHierarchical
)

func (k LabelKind) String() string {
	switch k {
	case LabelLocal:
		return "local"
	case LabelGlobal:
		return "global"
	case LabelHierarchical:
		return "hierarchical"
	}
	return "unknown"
}

// Mirror is the placement mirror state of a component instance.
type Mirror int

const (
	MirrorNone Mirror = iota
	MirrorX
	MirrorY
)

// ParseMirror maps the file token ("x"/"y") to a Mirror value.
func ParseMirror(s string) Mirror {
	switch s {
	case "x":
		return MirrorX
	case "y":
		return MirrorY
	}
	return MirrorNone
}

func (m Mirror) String() string {
	switch m {
	case MirrorX:
		return "x"
	case MirrorY:
		return "y"
	}
	return ""
}

// PinType is the electrical kind of a pin.
type PinType int

const (
	PinPassive PinType = iota
	PinInput
	PinOutput
	PinBidirectional
	PinTriState
	PinPowerIn
	PinPowerOut
	PinOpenCollector
	PinOpenEmitter
	PinNoConnect
	PinFree
	PinUnspecified
)

// ParsePinType maps the file token to a PinType. Unknown tokens map to
// PinUnspecified rather than failing; the kind never affects connectivity.
func ParsePinType(s string) PinType {
	switch s {
	case "passive":
		return PinPassive
	case "input":
		return PinInput
	case "output":
		return PinOutput
	case "bidirectional":
		return PinBidirectional
	case "tri_state":
		return PinTriState
	case "power_in":
		return PinPowerIn
	case "power_out":
		return PinPowerOut
	case "open_collector":
		return PinOpenCollector
	case "open_emitter":
		return PinOpenEmitter
	case "no_connect":
		return PinNoConnect
	case "free":
		return PinFree
	}
	return PinUnspecified
}

func (t PinType) String() string {
	switch t {
	case PinPassive:
		return "passive"
	case PinInput:
		return "input"
	case PinOutput:
		return "output"
	case PinBidirectional:
		return "bidirectional"
	case PinTriState:
		return "tri_state"
	case PinPowerIn:
		return "power_in"
	case PinPowerOut:
		return "power_out"
	case PinOpenCollector:
		return "open_collector"
	case PinOpenEmitter:
		return "open_emitter"
	case PinNoConnect:
		return "no_connect"
	case PinFree:
		return "free"
	}
	return "unspecified"
}

// Pin is a library-relative pin definition.
type Pin struct {
	Number string
	Name   string
	X      float64 // Relative to symbol origin, Y-up library coordinates
	Y      float64
	Angle  float64 // 0=right, 90=up, 180=left, 270=down
	Type   PinType
}

// LibSymbol is a reusable part definition from the lib_symbols section.
type LibSymbol struct {
	ID      string
	Pins    []Pin
	IsPower bool // power pseudo-symbols declare a net, they are not parts
}

// Component is a placed symbol instance.
type Component struct {
	LibID     string
	LibKey    string // resolved lib_symbols key: lib_name override or LibID
	Reference string
	Value     string
	Footprint string
	Position  Point
	Angle     float64
	Mirror    Mirror
	Unit      int
	DNP       bool

	// AbsolutePins maps pin number to its absolute document position,
	// derived once at build time through TransformPin.
	AbsolutePins map[string]Point
}

// Wire is a drawn polyline; each consecutive point pair is a segment.
type Wire struct {
	Points []Point
}

// Junction marks an explicit wire connection point. Connectivity is
// derived from shared coordinates, so junctions are informational.
type Junction struct {
	Position Point
}

// Label is a net name attached to a position.
type Label struct {
	Name     string
	Position Point
	Angle    float64
	Kind     LabelKind
}

// Schematic is the parsed document model.
type Schematic struct {
	Title      string
	LibSymbols map[string]*LibSymbol
	Components []Component
	Wires      []Wire
	Junctions  []Junction
	Labels     []Label
}

// LibSymbolFor resolves the library definition a component was placed
// from, or nil when the document does not define it.
func (s *Schematic) LibSymbolFor(c *Component) *LibSymbol {
	if c == nil {
		return nil
	}
	return s.LibSymbols[c.LibKey]
}

// ComponentByRef returns the component with the given reference designator.
func (s *Schematic) ComponentByRef(ref string) *Component {
	for i := range s.Components {
		if s.Components[i].Reference == ref {
			return &s.Components[i]
		}
	}
	return nil
}
