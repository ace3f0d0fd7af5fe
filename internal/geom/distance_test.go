package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSegmentDistanceLiteralScenarios(t *testing.T) {
	cases := []struct {
		name                   string
		s1h, s1t, s2h, s2t     Point
		want                   float64
	}{
		{
			name: "parallel segments offset by one",
			s1h:  Point{1, 0, 0}, s1t: Point{3, 0, 0},
			s2h: Point{1, 1, 0}, s2t: Point{3, 1, 0},
			want: 1,
		},
		{
			name: "perpendicular segments meeting at distance one",
			s1h:  Point{1, 0, 0}, s1t: Point{3, 0, 0},
			s2h: Point{0, 0, 0}, s2t: Point{0, 2, 0},
			want: 1,
		},
		{
			name: "degenerate coincident point segments",
			s1h:  Point{1, 2, 3}, s1t: Point{1, 2, 3},
			s2h: Point{1, 2, 3}, s2t: Point{1, 2, 3},
			want: 0,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SegmentDistance(c.s1h, c.s1t, c.s2h, c.s2t)
			if !almostEqual(got, c.want) {
				t.Errorf("SegmentDistance() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestDistanceSymmetricAndNonNegative(t *testing.T) {
	p := Point{1, 2, 3}
	q := Point{4, -1, 7}
	if Distance(p, q) != Distance(q, p) {
		t.Errorf("distance must be symmetric")
	}
	if Distance(p, q) < 0 {
		t.Errorf("distance must be non-negative")
	}
	if Distance(p, p) != 0 {
		t.Errorf("distance(p,p) must be zero")
	}
}

func TestSegmentDistanceBoundedByPointSegment(t *testing.T) {
	s1h, s1t := Point{0, 0, 0}, Point{2, 0, 0}
	s2h, s2t := Point{0, 5, 0}, Point{2, 5, 0}
	segDist := SegmentDistance(s1h, s1t, s2h, s2t)
	pointDist := PointSegmentDistance(s1h, s2h, s2t)
	if segDist > pointDist+1e-9 {
		t.Errorf("segment distance %v exceeds point-segment bound %v", segDist, pointDist)
	}
}

func TestHullCentreMatchesCentre(t *testing.T) {
	p1 := Point{0, 0, 0}
	p2 := Point{2, 4, 6}
	h := Hull(p1, p2)
	if h.Centre() != Centre(p1, p2) {
		t.Errorf("hull centre %v != centre %v", h.Centre(), Centre(p1, p2))
	}
}

func TestGeometricMedianSinglePoint(t *testing.T) {
	p := Point{1, 1, 1}
	got, err := GeometricMedian([]Point{p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p {
		t.Errorf("GeometricMedian single point = %v, want %v", got, p)
	}
}

func TestGeometricMedianEmptyFails(t *testing.T) {
	_, err := GeometricMedian(nil)
	if err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestGeometricMedianConvergesNearCentroidForSymmetricCloud(t *testing.T) {
	pts := []Point{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0},
	}
	got, err := GeometricMedian(pts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got.X, 0) || !almostEqual(got.Y, 0) || !almostEqual(got.Z, 0) {
		t.Errorf("GeometricMedian = %v, want near origin", got)
	}
}

func TestWidenExpandsAllBounds(t *testing.T) {
	b := Box{XL: 0, XU: 1, YL: 0, YU: 1, ZL: 0, ZU: 1}
	w := Widen(b, 2)
	want := Box{XL: -2, XU: 3, YL: -2, YU: 3, ZL: -2, ZU: 3}
	if w != want {
		t.Errorf("Widen() = %v, want %v", w, want)
	}
}

func TestEmptyBoxIsEmpty(t *testing.T) {
	if !EmptyBox().IsEmpty() {
		t.Errorf("EmptyBox() must report IsEmpty")
	}
}
