package cog

import (
	"fmt"

	"go.uber.org/zap"
)

// ClusterState is the search state of one cluster.
type ClusterState string

const (
	// ClusterSkipped clusters never entered the search: fewer than two
	// minority rows or no majority rows.
	ClusterSkipped ClusterState = "skipped"

	// ClusterReached clusters met the target imbalance ratio.
	ClusterReached ClusterState = "reached"

	// ClusterExhausted clusters stopped because the generator had nothing to
	// add or patience ran out.
	ClusterExhausted ClusterState = "exhausted"
)

// ClusterReport summarizes the search over one cluster.
type ClusterReport struct {
	ID       int
	Rows     int
	Minority int
	Majority int

	// InitialIR and FinalIR are the tracked imbalance ratios before and
	// after the search; both are 0 for skipped clusters.
	InitialIR float64
	FinalIR   float64

	Accepted int
	Rejected int
	Added    int
	State    ClusterState
}

// searcher runs the guided search. It is the only writer of set and best.
type searcher struct {
	cfg     Config
	log     *zap.Logger
	metrics *searchMetrics

	train *Dataset
	val   *Dataset
	// members[c] lists the training rows of cluster c in ascending order.
	members [][]int

	set      *workingSet
	best     float64
	counts   map[int]int
	total    int
	retrains int
	reports  []ClusterReport
}

func newSearcher(cfg Config, metrics *searchMetrics, train, val *Dataset, assign []int, baseline float64) *searcher {
	s := &searcher{
		cfg:     cfg,
		log:     cfg.Logger,
		metrics: metrics,
		train:   train,
		val:     val,
		members: make([][]int, cfg.Clusters),
		set:     newWorkingSet(train, assign),
		best:    baseline,
		counts:  make(map[int]int, cfg.Clusters),
	}
	for i, c := range assign {
		s.members[c] = append(s.members[c], i)
	}
	for c := range s.members {
		s.counts[c] = 0
	}
	s.metrics.best.Set(baseline)
	return s
}

// run searches every cluster in increasing id order. Later clusters see the
// working set left by earlier ones.
func (s *searcher) run() error {
	for c := range s.members {
		report, err := s.searchCluster(c)
		if err != nil {
			return fmt.Errorf("cog: cluster %d: %w", c, err)
		}
		s.reports = append(s.reports, report)
	}
	return nil
}

func (s *searcher) searchCluster(c int) (ClusterReport, error) {
	minority := s.cfg.MinorityLabel
	sub := s.train.Subset(s.members[c])
	counts := CountLabels(sub.Labels)
	_, majCount, _ := counts.Majority(minority)
	report := ClusterReport{
		ID:       c,
		Rows:     sub.Len(),
		Minority: counts[minority],
		Majority: majCount,
		State:    ClusterSkipped,
	}

	ir, ok := counts.IR(minority)
	if counts[minority] < 2 || !ok {
		s.log.Debug("cluster skipped", zap.Int("cluster", c),
			zap.Int("minority", report.Minority), zap.Int("majority", report.Majority))
		return report, nil
	}
	report.InitialIR = ir
	report.State = ClusterReached

	streak := 0
	for ir < s.cfg.TargetIR {
		over, err := OversampleCluster(s.cfg.Generator, sub.Features, sub.Labels, ir, s.cfg.TargetIR, minority)
		if err != nil {
			return report, err
		}
		if over.Added == 0 {
			report.State = ClusterExhausted
			break
		}

		candidate := s.set.withCluster(s.members[c], over)
		score, err := fitAndScore(s.cfg.Classifier, candidate.features, candidate.labels,
			s.val.Features, s.val.Labels, minority)
		if err != nil {
			return report, err
		}
		s.retrains++

		accepted := score > s.best
		s.log.Debug("candidate evaluated",
			zap.Int("cluster", c),
			zap.Int("version", candidate.version),
			zap.Int("added", over.Added),
			zap.Float64("ir", ir),
			zap.Float64("score", score),
			zap.Float64("best", s.best),
			zap.Bool("accepted", accepted))

		if !accepted {
			report.Rejected++
			s.metrics.rejected()
			streak++
			if streak >= s.cfg.Patience {
				report.State = ClusterExhausted
				break
			}
			continue
		}

		s.set = candidate
		s.best = score
		// The tracked ratio follows the generated rows only.
		ir, _ = CountLabels(over.Labels).IR(minority)
		s.counts[c] += over.Added
		s.total += over.Added
		streak = 0
		report.Accepted++
		report.Added += over.Added
		s.metrics.accepted(over.Added, score)
	}
	report.FinalIR = ir

	s.log.Info("cluster searched",
		zap.Int("cluster", c),
		zap.String("state", string(report.State)),
		zap.Int("accepted", report.Accepted),
		zap.Int("rejected", report.Rejected),
		zap.Int("added", report.Added),
		zap.Float64("ir", ir),
		zap.Float64("best", s.best))
	return report, nil
}
