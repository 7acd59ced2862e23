package cog

import (
	"math"
	"testing"
)

const floatTol = 1e-10

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestEuclideanDistance_HandComputed(t *testing.T) {
	m := EuclideanMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	// sqrt(9+16+0) = 5
	if d := m.Distance(a, b); !almostEqual(d, 5.0, floatTol) {
		t.Errorf("expected 5.0, got %v", d)
	}
	if rd := m.ReducedDistance(a, b); !almostEqual(rd, 25.0, floatTol) {
		t.Errorf("expected reduced 25.0, got %v", rd)
	}
	if d := m.Distance(a, a); d != 0 {
		t.Errorf("expected 0 for identical vectors, got %v", d)
	}
}

func TestManhattanDistance_HandComputed(t *testing.T) {
	m := ManhattanMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 0, 3}
	// |3| + |-2| + 0 = 5
	if d := m.Distance(a, b); !almostEqual(d, 5.0, floatTol) {
		t.Errorf("expected 5.0, got %v", d)
	}
}

func TestChebyshevDistance_HandComputed(t *testing.T) {
	m := ChebyshevMetric{}
	a := []float64{1, 2, 3}
	b := []float64{4, 0, 3}
	if d := m.Distance(a, b); !almostEqual(d, 3.0, floatTol) {
		t.Errorf("expected 3.0, got %v", d)
	}
}

func TestMinkowskiDistance_MatchesEuclideanAtP2(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	mk := MinkowskiMetric{P: 2}
	if d := mk.Distance(a, b); !almostEqual(d, 5.0, floatTol) {
		t.Errorf("Minkowski P=2: expected 5.0, got %v", d)
	}
	mk1 := MinkowskiMetric{P: 1}
	if d, want := mk1.Distance(a, b), (ManhattanMetric{}).Distance(a, b); !almostEqual(d, want, floatTol) {
		t.Errorf("Minkowski P=1: expected %v, got %v", want, d)
	}
}

func TestMinkowskiPanicsBelowOne(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for P < 1")
		}
	}()
	MinkowskiMetric{P: 0.5}.Distance([]float64{0}, []float64{1})
}

func TestDistToRdist_RoundTrip(t *testing.T) {
	a := []float64{0.5, -2, 7}
	b := []float64{3, 1, -1}
	metrics := []DistanceMetric{
		EuclideanMetric{},
		ManhattanMetric{},
		ChebyshevMetric{},
		MinkowskiMetric{P: 3},
	}
	for _, m := range metrics {
		d := m.Distance(a, b)
		rd := m.ReducedDistance(a, b)
		if got := m.DistToRdist(d); !almostEqual(got, rd, 1e-9) {
			t.Errorf("%T: DistToRdist(%v) = %v, want reduced distance %v", m, d, got, rd)
		}
	}
}
