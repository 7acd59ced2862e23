package cog

import "testing"

func TestWorkingSet_WithClusterReplacesByOrigin(t *testing.T) {
	train := &Dataset{
		Features: [][]float64{{0}, {1}, {2}, {3}, {4}},
		Labels:   []int{0, 1, 0, 1, 0},
	}
	ws := newWorkingSet(train, []int{0, 1, 0, 1, 0})

	// Cluster 1 holds rows 1 and 3; one synthetic row is added.
	next := ws.withCluster([]int{1, 3}, Oversampled{
		Features: [][]float64{{1}, {3}, {2.5}},
		Labels:   []int{1, 1, 1},
		Added:    1,
	})
	if next.version != ws.version+1 {
		t.Errorf("version = %d, want %d", next.version, ws.version+1)
	}
	if next.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", next.Len())
	}
	wantOrigins := []int{0, 2, 4, 1, 3, -1}
	for i, o := range wantOrigins {
		if next.origins[i] != o {
			t.Errorf("origins[%d] = %d, want %d", i, next.origins[i], o)
		}
	}
	for i, c := range next.clusters {
		if c != Unassigned {
			t.Errorf("clusters[%d] = %d, want Unassigned", i, c)
		}
	}
	if next.synthetic() != 1 {
		t.Errorf("synthetic() = %d, want 1", next.synthetic())
	}

	// The source snapshot is untouched.
	if ws.Len() != 5 || ws.clusters[1] != 1 || ws.synthetic() != 0 {
		t.Error("withCluster modified its receiver")
	}

	// A second cluster is still found after every row became Unassigned.
	third := next.withCluster([]int{0, 2, 4}, Oversampled{
		Features: [][]float64{{0}, {2}, {4}, {5}, {6}},
		Labels:   []int{0, 0, 0, 1, 1},
		Added:    2,
	})
	if third.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", third.Len())
	}
	if third.synthetic() != 3 {
		t.Errorf("synthetic() = %d, want 3", third.synthetic())
	}
	// Earlier synthetic rows survive a later replacement.
	if third.origins[2] != -1 || third.features[2][0] != 2.5 {
		t.Errorf("row 2 = origin %d value %v, want earlier synthetic row", third.origins[2], third.features[2])
	}
}

func TestWorkingSet_ReplacingTwiceDoesNotDuplicate(t *testing.T) {
	train := &Dataset{
		Features: [][]float64{{0}, {1}, {2}},
		Labels:   []int{0, 1, 1},
	}
	ws := newWorkingSet(train, []int{0, 0, 0})
	rows := Oversampled{
		Features: [][]float64{{0}, {1}, {2}, {1.5}},
		Labels:   []int{0, 1, 1, 1},
		Added:    1,
	}
	a := ws.withCluster([]int{0, 1, 2}, rows)
	b := a.withCluster([]int{0, 1, 2}, rows)
	// The cluster's own rows are replaced again, but the first injection's
	// synthetic row stays.
	if b.Len() != 5 {
		t.Errorf("Len() = %d, want 5", b.Len())
	}
	if b.synthetic() != 2 {
		t.Errorf("synthetic() = %d, want 2", b.synthetic())
	}
}
