package schematic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// DefaultTolerance is the coordinate distance below which two points are
// treated as the same electrical location (in schematic length units, mm).
const DefaultTolerance = 0.01

// Point is a 2D coordinate in document space (Y grows downward).
// Points are never compared with exact float equality.
type Point struct {
	X float64
	Y float64
}

// CloseTo reports whether the other point lies within tol on both axes.
func (p Point) CloseTo(o Point, tol float64) bool {
	return scalar.EqualWithinAbs(p.X, o.X, tol) && scalar.EqualWithinAbs(p.Y, o.Y, tol)
}

// Key maps the point onto a fixed-precision grid key for hashing.
// Points that round to the same cell compare equal as map keys.
func (p Point) Key(decimals int) string {
	scale := math.Pow(10, float64(decimals))
	return fmt.Sprintf("%d:%d",
		int64(math.Round(p.X*scale)),
		int64(math.Round(p.Y*scale)))
}

// TransformPin converts a library-relative pin position to an absolute
// document position for a placed component.
//
// Library symbols use a Y-up coordinate system while the document is Y-down,
// so the pin's Y is flipped first; the mirror flag then negates one axis,
// the placement rotation is applied with its sign inverted (a consequence of
// the axis flip), and finally the component origin translates the result.
func TransformPin(pinX, pinY, compX, compY, angleDeg float64, mirror Mirror) Point {
	px, py := pinX, -pinY

	switch mirror {
	case MirrorX:
		py = -py
	case MirrorY:
		px = -px
	}

	rad := -angleDeg * math.Pi / 180
	cos := math.Cos(rad)
	sin := math.Sin(rad)

	rx := px*cos - py*sin
	ry := px*sin + py*cos

	return Point{X: compX + rx, Y: compY + ry}
}
