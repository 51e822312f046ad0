package slider

import (
	"math"
	"testing"

	"github.com/audioscript/jsfxgo/pkg/parse"
)

func approxEqual(t *testing.T, got, want, tol float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s: got %v, want %v", msg, got, want)
	}
}

func TestCurveLinearRoundTrip(t *testing.T) {
	c := Curve{Min: 0, Max: 10, Shape: parse.ShapeLinear}
	approxEqual(t, c.ToDSL(0), 0, 1e-9, "ToDSL(0)")
	approxEqual(t, c.ToDSL(0.5), 5, 1e-9, "ToDSL(0.5)")
	approxEqual(t, c.ToDSL(1), 10, 1e-9, "ToDSL(1)")
	approxEqual(t, c.ToNormalized(5), 0.5, 1e-9, "ToNormalized(5)")
}

func TestCurveLogWithoutDeclaredCenterUsesGeometricMidpoint(t *testing.T) {
	c := Curve{Min: 20, Max: 20480, Shape: parse.ShapeLog}
	approxEqual(t, c.ToDSL(0), 20, 1e-6, "ToDSL(0)")
	approxEqual(t, c.ToDSL(0.5), 640, 1e-6, "ToDSL(0.5) center")
	approxEqual(t, c.ToDSL(1), 20480, 1e-3, "ToDSL(1)")
	approxEqual(t, c.ToNormalized(640), 0.5, 1e-9, "ToNormalized(center)")
	approxEqual(t, c.ToNormalized(20), 0, 1e-9, "ToNormalized(min)")
	approxEqual(t, c.ToNormalized(20480), 1, 1e-6, "ToNormalized(max)")
}

func TestCurveLogWithDeclaredCenterHitsThreePoints(t *testing.T) {
	c := Curve{Min: 20, Max: 20000, Shape: parse.ShapeLog, Modifier: 2000}
	approxEqual(t, c.ToDSL(0), 20, 1e-6, "t=0")
	approxEqual(t, c.ToDSL(0.5), 2000, 1e-3, "t=0.5")
	approxEqual(t, c.ToDSL(1), 20000, 1e-2, "t=1")

	for _, tt := range []float64{0.1, 0.3, 0.7, 0.9} {
		v := c.ToDSL(tt)
		back := c.ToNormalized(v)
		approxEqual(t, back, tt, 1e-6, "round trip")
	}
}

// Log degrades to linear when the center sits within epsilon of min,
// mirroring the same rule pkg/parse applies at parse time.
func TestCurveLogDegeneratesToLinearWhenCenterNearMin(t *testing.T) {
	c := Curve{Min: 10, Max: 100, Shape: parse.ShapeLog, Modifier: 10}
	approxEqual(t, c.ToDSL(0.5), 55, 1e-9, "degenerate log midpoint")
}

func TestCurveLogDegeneratesToLinearWhenCenterOutsideRange(t *testing.T) {
	above := Curve{Min: 1, Max: 10, Shape: parse.ShapeLog, Modifier: 20}
	approxEqual(t, above.ToDSL(0.5), 5.5, 1e-9, "center above max")
	approxEqual(t, above.ToDSL(1), 10, 1e-9, "center above max stays within range at t=1")

	below := Curve{Min: 5, Max: 10, Shape: parse.ShapeLog, Modifier: 1}
	approxEqual(t, below.ToDSL(0.5), 7.5, 1e-9, "center below min")
}

func TestCurveLogDegeneratesWhenRangeStraddlesZero(t *testing.T) {
	c := Curve{Min: -10, Max: 10, Shape: parse.ShapeLog}
	approxEqual(t, c.ToDSL(0.5), 0, 1e-9, "linear midpoint of [-10,10]")
}

func TestCurveSqrRawAndAutomatedDiffer(t *testing.T) {
	c := Curve{Min: 0, Max: 1, Shape: parse.ShapeSqr, Modifier: 2}
	approxEqual(t, c.ToDSL(0.5), 0.25, 1e-9, "raw t^2")
	approxEqual(t, c.ToDSLAutomated(0.5), math.Sqrt(0.5), 1e-9, "automated t^(1/2)")

	approxEqual(t, c.ToNormalized(0.25), 0.5, 1e-9, "raw inverse")
	approxEqual(t, c.ToNormalizedAutomated(math.Sqrt(0.5)), 0.5, 1e-9, "automated inverse")
}

func TestCurveSqrBoundaries(t *testing.T) {
	c := Curve{Min: 100, Max: 200, Shape: parse.ShapeSqr, Modifier: 3}
	approxEqual(t, c.ToDSL(0), 100, 1e-9, "t=0")
	approxEqual(t, c.ToDSL(1), 200, 1e-9, "t=1")
}

func TestCurveDegenerateRangeReturnsMin(t *testing.T) {
	c := Curve{Min: 5, Max: 5, Shape: parse.ShapeLinear}
	approxEqual(t, c.ToDSL(0.9), 5, 1e-9, "degenerate range")
	approxEqual(t, c.ToNormalized(5), 0, 1e-9, "degenerate normalize")
}

func TestFromParsedSliderSeedsDeclaredDefaultDirectly(t *testing.T) {
	ps := parse.Slider{ID: 3, Var: "foo", Default: 0.5, Min: -1, Max: 1, Shape: parse.ShapeLinear}
	s := FromParsedSlider(ps)

	if !s.Exists {
		t.Fatalf("expected Exists true immediately after construction")
	}
	approxEqual(t, s.Value(), 0.5, 1e-9, "seeded default")
	if s.Index() != 2 {
		t.Fatalf("Index() = %d, want 2", s.Index())
	}
}

func TestSliderSetValueIsAtomicRoundTrip(t *testing.T) {
	s := &Slider{ID: 1}
	s.SetValue(3.14159)
	approxEqual(t, s.Value(), 3.14159, 1e-9, "round-tripped value")
}

func TestTableGetByIDAndByIndex(t *testing.T) {
	tbl := NewTable()
	s := FromParsedSlider(parse.Slider{ID: 7, Var: "Cutoff", Default: 1000})
	tbl.Set(s)

	got, ok := tbl.Get(7)
	if !ok || got != s {
		t.Fatalf("Get(7) = %v, %v, want slider, true", got, ok)
	}
	got, ok = tbl.ByIndex(6)
	if !ok || got != s {
		t.Fatalf("ByIndex(6) = %v, %v, want slider, true", got, ok)
	}
	if _, ok := tbl.Get(8); ok {
		t.Fatalf("Get(8) should not exist")
	}
}

func TestTableFindByVarCaseInsensitive(t *testing.T) {
	tbl := NewTable()
	tbl.Set(FromParsedSlider(parse.Slider{ID: 1, Var: "Cutoff", Default: 0}))

	got, ok := tbl.FindByVar("cUTOFF")
	if !ok || got.ID != 1 {
		t.Fatalf("FindByVar case-insensitive lookup failed: %v, %v", got, ok)
	}
	if _, ok := tbl.FindByVar("missing"); ok {
		t.Fatalf("FindByVar(missing) should not be found")
	}
}

func TestTableExcludesNonExistentSliderFromFind(t *testing.T) {
	tbl := NewTable()
	s := FromParsedSlider(parse.Slider{ID: 1, Var: "Cutoff", Default: 0})
	s.Exists = false
	tbl.Set(s)

	if _, ok := tbl.FindByVar("Cutoff"); ok {
		t.Fatalf("FindByVar should skip a slider marked Exists=false")
	}
	if _, ok := tbl.Get(1); ok {
		t.Fatalf("Get should report false for Exists=false slider")
	}
}
