package cog

import (
	"math"
	"math/rand"
	"testing"
)

func TestGMean(t *testing.T) {
	tests := []struct {
		name     string
		yTrue    []int
		yPred    []int
		positive int
		want     float64
	}{
		{"perfect", []int{0, 0, 1, 1}, []int{0, 0, 1, 1}, 1, 1},
		{"all wrong", []int{0, 0, 1, 1}, []int{1, 1, 0, 0}, 1, 0},
		{"all predicted negative", []int{0, 0, 1, 1}, []int{0, 0, 0, 0}, 1, 0},
		{"all predicted positive", []int{0, 0, 1, 1}, []int{1, 1, 1, 1}, 1, 0},
		// sensitivity 1/2, specificity 2/2
		{"half sensitivity", []int{0, 0, 1, 1}, []int{0, 0, 1, 0}, 1, math.Sqrt(0.5)},
		// sensitivity 2/3, specificity 3/4
		{"hand computed", []int{1, 1, 1, 0, 0, 0, 0}, []int{1, 1, 0, 0, 0, 0, 1}, 1, math.Sqrt(2.0 / 3.0 * 3.0 / 4.0)},
		{"no positives", []int{0, 0, 0}, []int{0, 0, 0}, 1, 0},
		{"no negatives", []int{1, 1}, []int{1, 1}, 1, 0},
		{"empty", nil, nil, 1, 0},
		{"other positive label", []int{7, 7, 3, 3}, []int{7, 3, 3, 3}, 7, math.Sqrt(0.5)},
		{"multi-valued negatives", []int{1, 2, 3, 1}, []int{1, 3, 2, 1}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GMean(tt.yTrue, tt.yPred, tt.positive)
			if !almostEqual(got, tt.want, floatTol) {
				t.Errorf("GMean = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGMean_BoundedOnRandomLabels(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 500; trial++ {
		n := rng.Intn(30)
		yTrue := make([]int, n)
		yPred := make([]int, n)
		for i := range yTrue {
			yTrue[i] = rng.Intn(2)
			yPred[i] = rng.Intn(2)
		}
		g := GMean(yTrue, yPred, 1)
		if g < 0 || g > 1 || math.IsNaN(g) {
			t.Fatalf("trial %d: GMean = %v out of [0, 1]", trial, g)
		}
		cm := Confusion(yTrue, yPred, 1)
		if (cm.Sensitivity() == 0 || cm.Specificity() == 0) && g != 0 {
			t.Errorf("trial %d: GMean = %v with a zero rate %+v", trial, g, cm)
		}
		if g == 1 && (cm.FN != 0 || cm.FP != 0) {
			t.Errorf("trial %d: GMean = 1 with errors %+v", trial, cm)
		}
	}
}

func TestConfusion_Counts(t *testing.T) {
	cm := Confusion([]int{1, 1, 0, 0, 1}, []int{1, 0, 0, 1, 1}, 1)
	want := ConfusionMatrix{TP: 2, FN: 1, TN: 1, FP: 1}
	if cm != want {
		t.Errorf("Confusion = %+v, want %+v", cm, want)
	}
}

func TestConfusion_LengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on mismatched lengths")
		}
	}()
	Confusion([]int{1, 0}, []int{1}, 1)
}
