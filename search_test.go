package cog

import (
	"math"
	"testing"

	"go.uber.org/zap/zaptest"
)

// scriptedClassifier ignores its training rows. Each Fit takes the next entry
// of a shared script: the number of validation positives it will recall.
// Validation rows must be {label, index within class}.
type scriptedClassifier struct {
	script *[]int
	fits   *int
	tp     int
}

func newScriptedClassifier(tp ...int) *scriptedClassifier {
	fits := 0
	return &scriptedClassifier{script: &tp, fits: &fits}
}

func (c *scriptedClassifier) Fit(features [][]float64, labels []int) error {
	*c.fits++
	c.tp = 0
	if len(*c.script) > 0 {
		c.tp = (*c.script)[0]
		*c.script = (*c.script)[1:]
	}
	return nil
}

func (c *scriptedClassifier) Predict(features [][]float64) ([]int, error) {
	pred := make([]int, len(features))
	for i, row := range features {
		if row[0] == 1 && int(row[1]) < c.tp {
			pred[i] = 1
		}
	}
	return pred, nil
}

func (c *scriptedClassifier) Clone() Classifier {
	return &scriptedClassifier{script: c.script, fits: c.fits}
}

// scriptedValidation has four positives and four negatives, so a classifier
// recalling tp positives scores sqrt(tp/4).
func scriptedValidation() *Dataset {
	ds := &Dataset{}
	for _, label := range []int{1, 0} {
		for i := 0; i < 4; i++ {
			ds.Features = append(ds.Features, []float64{float64(label), float64(i)})
			ds.Labels = append(ds.Labels, label)
		}
	}
	return ds
}

func recallScore(tp int) float64 { return math.Sqrt(float64(tp) / 4) }

// searchTrain lays out one block per entry of minorities, each with ten
// majority rows, and returns the rows with their cluster assignments.
func searchTrain(minorities ...int) (*Dataset, []int) {
	ds := &Dataset{}
	var assign []int
	for c, nMin := range minorities {
		for i := 0; i < 10+nMin; i++ {
			label := 0
			if i < nMin {
				label = 1
			}
			ds.Features = append(ds.Features, []float64{float64(c * 100), float64(i)})
			ds.Labels = append(ds.Labels, label)
			assign = append(assign, c)
		}
	}
	return ds, assign
}

func newTestSearcher(t *testing.T, cfg Config, train *Dataset, assign []int, baseline float64) *searcher {
	t.Helper()
	cfg.Logger = zaptest.NewLogger(t)
	metrics, err := newSearchMetrics(nil)
	if err != nil {
		t.Fatal(err)
	}
	return newSearcher(cfg, metrics, train, scriptedValidation(), assign, baseline)
}

func TestSearch_SingleMinorityRowsAddNothing(t *testing.T) {
	train, assign := searchTrain(1, 1, 1)
	gen := &stubGenerator{add: 5}
	clf := newScriptedClassifier(4, 4, 4)
	cfg := DefaultConfig()
	cfg.Clusters, cfg.TargetIR = 3, 1
	cfg.Classifier, cfg.Generator = clf, gen

	s := newTestSearcher(t, cfg, train, assign, recallScore(1))
	if err := s.run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.total != 0 || s.retrains != 0 || gen.calls != 0 {
		t.Errorf("total = %d, retrains = %d, generator calls = %d; want all 0", s.total, s.retrains, gen.calls)
	}
	for _, r := range s.reports {
		if r.State != ClusterSkipped {
			t.Errorf("cluster %d state = %s, want skipped", r.ID, r.State)
		}
	}
	if s.set.Len() != train.Len() {
		t.Errorf("working set has %d rows, want %d", s.set.Len(), train.Len())
	}
}

func TestSearch_ZeroPatienceStopsOnFirstRejection(t *testing.T) {
	train, assign := searchTrain(3)
	gen := &stubGenerator{add: 2}
	// Same recall as the baseline: not strictly better.
	clf := newScriptedClassifier(2, 4, 4)
	cfg := DefaultConfig()
	cfg.Clusters, cfg.TargetIR, cfg.Patience = 1, 1, 0
	cfg.Classifier, cfg.Generator = clf, gen

	s := newTestSearcher(t, cfg, train, assign, recallScore(2))
	if err := s.run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := s.reports[0]
	if r.Rejected != 1 || r.Accepted != 0 || r.State != ClusterExhausted {
		t.Errorf("report = %+v, want one rejection and exhausted", r)
	}
	if s.retrains != 1 || s.total != 0 {
		t.Errorf("retrains = %d, total = %d; want 1 and 0", s.retrains, s.total)
	}
	if s.best != recallScore(2) {
		t.Errorf("best = %v, want baseline %v", s.best, recallScore(2))
	}
	if s.set.version != 0 {
		t.Errorf("working set version = %d, want 0", s.set.version)
	}
}

func TestSearch_PatienceCountsConsecutiveRejections(t *testing.T) {
	train, assign := searchTrain(2)
	gen := &stubGenerator{add: 2}
	// Two improvements, then three non-improving candidates.
	clf := newScriptedClassifier(2, 3, 1, 3, 2)
	cfg := DefaultConfig()
	cfg.Clusters, cfg.TargetIR, cfg.Patience = 1, 1, 3
	cfg.Classifier, cfg.Generator = clf, gen

	s := newTestSearcher(t, cfg, train, assign, recallScore(1))
	if err := s.run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := s.reports[0]
	if r.Accepted != 2 || r.Rejected != 3 || r.State != ClusterExhausted {
		t.Errorf("report = %+v, want 2 accepted, 3 rejected, exhausted", r)
	}
	if s.retrains != 5 {
		t.Errorf("retrains = %d, want 5", s.retrains)
	}
	if s.total != 4 || s.counts[0] != 4 || r.Added != 4 {
		t.Errorf("total = %d, counts[0] = %d, added = %d; want 4", s.total, s.counts[0], r.Added)
	}
	if s.best != recallScore(3) {
		t.Errorf("best = %v, want %v", s.best, recallScore(3))
	}
	// Each accepted candidate replaces the cluster's observed rows; synthetic
	// rows from the earlier injection stay.
	if s.set.version != 2 || s.set.synthetic() != 4 {
		t.Errorf("version = %d, synthetic = %d; want 2 and 4", s.set.version, s.set.synthetic())
	}
	// After an accepted injection of two minority rows the tracked ratio is 4/10.
	if !almostEqual(r.InitialIR, 0.2, floatTol) || !almostEqual(r.FinalIR, 0.4, floatTol) {
		t.Errorf("IR %v -> %v, want 0.2 -> 0.4", r.InitialIR, r.FinalIR)
	}
}

func TestSearch_ReachesTarget(t *testing.T) {
	train, assign := searchTrain(2)
	gen := &stubGenerator{add: 2}
	clf := newScriptedClassifier(4)
	cfg := DefaultConfig()
	cfg.Clusters, cfg.TargetIR = 1, 0.4
	cfg.Classifier, cfg.Generator = clf, gen

	s := newTestSearcher(t, cfg, train, assign, 0)
	if err := s.run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := s.reports[0]
	if r.State != ClusterReached || r.Accepted != 1 {
		t.Errorf("report = %+v, want reached after one acceptance", r)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestSearch_TotalsAndMonotonicBest(t *testing.T) {
	train, assign := searchTrain(2, 0, 3)
	gen := &stubGenerator{add: 2}
	clf := newScriptedClassifier(2, 1, 3, 0)
	cfg := DefaultConfig()
	cfg.Clusters, cfg.TargetIR, cfg.Patience = 3, 1, 1
	cfg.Classifier, cfg.Generator = clf, gen

	s := newTestSearcher(t, cfg, train, assign, recallScore(1))
	if err := s.run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(s.reports))
	}
	if s.reports[1].State != ClusterSkipped {
		t.Errorf("cluster 1 state = %s, want skipped", s.reports[1].State)
	}

	sum := 0
	for c, n := range s.counts {
		sum += n
		if n != s.reports[c].Added {
			t.Errorf("counts[%d] = %d, report added %d", c, n, s.reports[c].Added)
		}
	}
	if sum != s.total || s.total != 4 {
		t.Errorf("sum of counts = %d, total = %d; want 4", sum, s.total)
	}
	if len(s.counts) != 3 {
		t.Errorf("counts has %d clusters, want 3", len(s.counts))
	}
	if s.best != recallScore(3) {
		t.Errorf("best = %v, want %v", s.best, recallScore(3))
	}
	if s.set.synthetic() != s.total {
		t.Errorf("working set holds %d synthetic rows, total %d", s.set.synthetic(), s.total)
	}
	// Later clusters are found by origin even though the first acceptance
	// left every row Unassigned.
	if s.set.Len() != train.Len()+4 {
		t.Errorf("working set has %d rows, want %d", s.set.Len(), train.Len()+4)
	}
}
