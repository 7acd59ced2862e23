package cog

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Config controls a guided oversampling run.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Clusters is the number of clusters K the training set is split into.
	// Must be >= 1.
	Clusters int

	// TargetIR is the minority/majority ratio each cluster is oversampled
	// toward. Must be in (0, 1].
	TargetIR float64

	// MinorityLabel is the label treated as the positive (minority) class.
	// Default: 1.
	MinorityLabel int

	// Patience is the number of consecutive non-improving candidates
	// tolerated per cluster. 0 abandons a cluster on its first rejection.
	// Must be >= 0. Default: 3.
	Patience int

	// Classifier is cloned for every fit; the instance itself is never
	// trained. Default: a DecisionTree with default settings.
	Classifier Classifier

	// Clusterer partitions the training features. Default: KMeans seeded
	// with Seed.
	Clusterer Clusterer

	// Generator produces synthetic rows. Default: SMOTE seeded with Seed.
	// Stateful generators should be fresh per run for reproducible results.
	Generator Generator

	// Seed drives the stratified split and the default collaborators.
	// Default: 42.
	Seed int64

	// Workers bounds goroutines used inside the default collaborators.
	// 0 means runtime.NumCPU(). Clusters are always searched sequentially.
	Workers int

	// Logger receives progress logs. Default: zap.NewNop().
	Logger *zap.Logger

	// Registerer, if set, receives the search counters.
	Registerer prometheus.Registerer
}

// Result contains the outcome of a run.
type Result struct {
	// Score is the test-set G-mean of the model trained on the final
	// working dataset.
	Score float64

	// SyntheticCount is the number of synthetic rows in accepted injections.
	SyntheticCount int

	// BaselineScore is the validation G-mean of a model trained on the raw
	// training partition. It seeds the acceptance threshold.
	BaselineScore float64

	// BaselineTestScore is the test-set G-mean of that baseline model.
	BaselineTestScore float64

	// BestValidationScore is the acceptance threshold at the end of the run.
	BestValidationScore float64

	// ResamplingCounts maps cluster id to accepted synthetic rows.
	ResamplingCounts map[int]int

	// Clusters reports the search per cluster, in id order.
	Clusters []ClusterReport

	// Retrains counts candidate fits, excluding baseline and final fits.
	Retrains int

	// TrainRows and FinalRows are the sizes of the training partition and
	// of the final working dataset.
	TrainRows int
	FinalRows int
}

// DefaultConfig returns a Config with reasonable defaults. Clusters and
// TargetIR have no sensible default and must be set.
func DefaultConfig() Config {
	return Config{
		MinorityLabel: 1,
		Patience:      3,
		Seed:          42,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.Clusters < 1 {
		return fmt.Errorf("cog: Clusters must be >= 1, got %d", cfg.Clusters)
	}
	if cfg.TargetIR <= 0 || cfg.TargetIR > 1 {
		return fmt.Errorf("cog: TargetIR must be in (0, 1], got %f", cfg.TargetIR)
	}
	if cfg.Patience < 0 {
		return fmt.Errorf("cog: Patience must be >= 0, got %d", cfg.Patience)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("cog: Workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}

// applyDefaults fills in nil collaborators with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Classifier == nil {
		dt := NewDecisionTree()
		dt.Workers = cfg.Workers
		cfg.Classifier = dt
	}
	if cfg.Clusterer == nil {
		km := NewKMeans(cfg.Seed)
		km.Workers = cfg.Workers
		cfg.Clusterer = km
	}
	if cfg.Generator == nil {
		cfg.Generator = NewSMOTE(cfg.Seed)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// Run loads a CSV dataset and runs the guided oversampling on it.
func Run(path string, cfg Config) (*Result, error) {
	ds, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	return RunDataset(ds, cfg)
}

// RunDataset splits ds 70/15/15 into train, validation and test partitions,
// oversamples the training partition cluster by cluster and scores the final
// model on the test partition.
func RunDataset(ds *Dataset, cfg Config) (*Result, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	log := cfg.Logger

	if ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	counts := CountLabels(ds.Labels)
	if counts[cfg.MinorityLabel] == 0 {
		return nil, fmt.Errorf("%w: minority label %d not present (labels %v)", ErrUnknownLabel, cfg.MinorityLabel, counts.Classes())
	}
	if len(counts) != 2 {
		return nil, fmt.Errorf("%w: need exactly 2 labels, got %v", ErrUnknownLabel, counts.Classes())
	}

	parts, err := SplitTrainValTest(ds, cfg.Seed)
	if err != nil {
		return nil, err
	}
	train, val, test := parts.Train, parts.Validation, parts.Test
	log.Info("dataset split",
		zap.Int("rows", ds.Len()),
		zap.Int("features", len(ds.Columns)),
		zap.Int("train", train.Len()),
		zap.Int("validation", val.Len()),
		zap.Int("test", test.Len()))

	baseline := cfg.Classifier.Clone()
	if err := baseline.Fit(train.Features, train.Labels); err != nil {
		return nil, fmt.Errorf("cog: baseline fit: %w", err)
	}
	baseScore, err := scoreOn(baseline, val, cfg.MinorityLabel)
	if err != nil {
		return nil, fmt.Errorf("cog: baseline validation: %w", err)
	}
	baseTest, err := scoreOn(baseline, test, cfg.MinorityLabel)
	if err != nil {
		return nil, fmt.Errorf("cog: baseline test: %w", err)
	}
	log.Info("baseline", zap.Float64("validation_gmean", baseScore), zap.Float64("test_gmean", baseTest))

	assign, err := cfg.Clusterer.FitPredict(train.Features, cfg.Clusters)
	if err != nil {
		return nil, fmt.Errorf("cog: clustering: %w", err)
	}
	if err := checkAssignments(assign, train.Len(), cfg.Clusters); err != nil {
		return nil, err
	}
	log.Info("clustered", zap.Int("clusters", cfg.Clusters))

	metrics, err := newSearchMetrics(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("cog: metrics: %w", err)
	}
	s := newSearcher(cfg, metrics, train, val, assign, baseScore)
	if err := s.run(); err != nil {
		return nil, err
	}

	final := cfg.Classifier.Clone()
	if err := final.Fit(s.set.features, s.set.labels); err != nil {
		return nil, fmt.Errorf("cog: final fit: %w", err)
	}
	score, err := scoreOn(final, test, cfg.MinorityLabel)
	if err != nil {
		return nil, fmt.Errorf("cog: final test: %w", err)
	}
	log.Info("final",
		zap.Float64("test_gmean", score),
		zap.Int("synthetic", s.total),
		zap.Int("retrains", s.retrains),
		zap.Float64("best_validation_gmean", s.best))

	return &Result{
		Score:               score,
		SyntheticCount:      s.total,
		BaselineScore:       baseScore,
		BaselineTestScore:   baseTest,
		BestValidationScore: s.best,
		ResamplingCounts:    s.counts,
		Clusters:            s.reports,
		Retrains:            s.retrains,
		TrainRows:           train.Len(),
		FinalRows:           s.set.Len(),
	}, nil
}

func scoreOn(clf Classifier, ds *Dataset, positive int) (float64, error) {
	pred, err := clf.Predict(ds.Features)
	if err != nil {
		return 0, err
	}
	return GMean(ds.Labels, pred, positive), nil
}

// checkAssignments verifies a clusterer returned one id in [0, k) per row.
func checkAssignments(assign []int, n, k int) error {
	if len(assign) != n {
		return fmt.Errorf("cog: clusterer returned %d assignments for %d rows", len(assign), n)
	}
	for i, c := range assign {
		if c < 0 || c >= k {
			return fmt.Errorf("cog: clusterer assigned row %d to cluster %d, want [0, %d)", i, c, k)
		}
	}
	return nil
}
