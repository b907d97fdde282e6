package schematic

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// Hand-computed positions for a pin at library (0, 3.81) — the upper pin
// of a standard two-pin vertical device — placed at (100, 100).
func TestTransformPinRotations(t *testing.T) {
	tests := []struct {
		name   string
		angle  float64
		mirror Mirror
		want   Point
	}{
		// Library Y-up flips to document Y-down: the pin lands above center.
		{"0 degrees", 0, MirrorNone, Point{100, 96.19}},
		{"90 degrees", 90, MirrorNone, Point{96.19, 100}},
		{"180 degrees", 180, MirrorNone, Point{100, 103.81}},
		{"270 degrees", 270, MirrorNone, Point{103.81, 100}},
		{"mirror x", 0, MirrorX, Point{100, 103.81}},
		{"mirror y", 0, MirrorY, Point{100, 96.19}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransformPin(0, 3.81, 100, 100, tt.angle, tt.mirror)
			if !approxEqual(got.X, tt.want.X) || !approxEqual(got.Y, tt.want.Y) {
				t.Errorf("TransformPin(0, 3.81, 100, 100, %v, %v) = (%.4f, %.4f), want (%.2f, %.2f)",
					tt.angle, tt.mirror, got.X, got.Y, tt.want.X, tt.want.Y)
			}
		})
	}
}

// A pin off both axes exercises the full rotation matrix.
func TestTransformPinOffAxis(t *testing.T) {
	// Library (2.54, 1.27) -> flip -> (2.54, -1.27); rotate by -90:
	// cos=0, sin=-1 -> (2.54*0 - (-1.27)*(-1), 2.54*(-1) + (-1.27)*0) = (-1.27, -2.54)
	got := TransformPin(2.54, 1.27, 50, 60, 90, MirrorNone)
	if !approxEqual(got.X, 48.73) || !approxEqual(got.Y, 57.46) {
		t.Errorf("got (%.4f, %.4f), want (48.73, 57.46)", got.X, got.Y)
	}
}

func TestTransformPinMirrorThenRotate(t *testing.T) {
	// Mirror y negates document X before rotation.
	// (2.54, 0) -> flip -> (2.54, 0) -> mirror y -> (-2.54, 0)
	// rotate -90 -> (0, 2.54); translate (10, 10) -> (10, 12.54)
	got := TransformPin(2.54, 0, 10, 10, 90, MirrorY)
	if !approxEqual(got.X, 10) || !approxEqual(got.Y, 12.54) {
		t.Errorf("got (%.4f, %.4f), want (10, 12.54)", got.X, got.Y)
	}
}

func TestPointCloseTo(t *testing.T) {
	p := Point{100, 50}
	if !p.CloseTo(Point{100.005, 49.995}, DefaultTolerance) {
		t.Error("points within tolerance should match")
	}
	if p.CloseTo(Point{100.02, 50}, DefaultTolerance) {
		t.Error("points outside tolerance must not match")
	}
}

func TestPointKey(t *testing.T) {
	a := Point{100.00001, 50}
	b := Point{99.99999, 50}
	if a.Key(4) != b.Key(4) {
		t.Errorf("expected identical 4-decimal keys, got %s vs %s", a.Key(4), b.Key(4))
	}
	c := Point{100.001, 50}
	if a.Key(4) == c.Key(4) {
		t.Error("expected distinct keys beyond grid resolution")
	}
}
