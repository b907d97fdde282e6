package csn

// PinLayout places one pin of a symbol definition, in symbol-local
// Y-up coordinates.
type PinLayout struct {
	Number   string
	Name     string
	X, Y     float64
	AngleDeg int
	Length   float64
	Electric string // pin electrical type, e.g. "passive"
}

// PartDef is a symbol definition a decoder can emit for a type code.
// Graphic is the body drawing of the _0_1 unit as raw s-expression text,
// already indented for nesting inside lib_symbols.
type PartDef struct {
	LibID   string
	Graphic string
	Pins    []PinLayout
}

// SymbolLibrary resolves type codes to symbol definitions during
// decoding. Lookup misses fall back to a generated rectangle symbol.
type SymbolLibrary interface {
	Lookup(typeCode string) (*PartDef, bool)
}

type builtinLibrary struct {
	parts map[string]*PartDef
}

func (l *builtinLibrary) Lookup(typeCode string) (*PartDef, bool) {
	pd, ok := l.parts[typeCode]
	return pd, ok
}

// BuiltinLibrary covers the common passives with stock KiCad symbol
// geometry.
func BuiltinLibrary() SymbolLibrary {
	return &builtinLibrary{parts: map[string]*PartDef{
		"R": {
			LibID: "Device:R",
			Graphic: `      (symbol "R_0_1"
        (rectangle
          (start -1.016 -2.54)
          (end 1.016 2.54)
          (stroke (width 0.254) (type default))
          (fill (type none))))`,
			Pins: []PinLayout{
				{Number: "1", Name: "~", X: 0, Y: 3.81, AngleDeg: 270, Length: 1.27, Electric: "passive"},
				{Number: "2", Name: "~", X: 0, Y: -3.81, AngleDeg: 90, Length: 1.27, Electric: "passive"},
			},
		},
		"C": {
			LibID: "Device:C",
			Graphic: `      (symbol "C_0_1"
        (polyline
          (pts (xy -2.032 0.762) (xy 2.032 0.762))
          (stroke (width 0.508) (type default))
          (fill (type none)))
        (polyline
          (pts (xy -2.032 -0.762) (xy 2.032 -0.762))
          (stroke (width 0.508) (type default))
          (fill (type none))))`,
			Pins: []PinLayout{
				{Number: "1", Name: "~", X: 0, Y: 3.81, AngleDeg: 270, Length: 2.794, Electric: "passive"},
				{Number: "2", Name: "~", X: 0, Y: -3.81, AngleDeg: 90, Length: 2.794, Electric: "passive"},
			},
		},
	}}
}
