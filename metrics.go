package cog

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// searchMetrics counts candidate evaluations of the guided search.
type searchMetrics struct {
	candidates *prometheus.CounterVec
	synthetic  prometheus.Counter
	best       prometheus.Gauge
}

func newSearchMetrics(reg prometheus.Registerer) (*searchMetrics, error) {
	m := &searchMetrics{
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cog_candidates_total",
			Help: "Candidate injections evaluated, by outcome.",
		}, []string{"outcome"}),
		synthetic: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cog_synthetic_rows_total",
			Help: "Synthetic rows in accepted injections.",
		}),
		best: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cog_best_validation_score",
			Help: "Best validation G-mean seen in the current run.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.candidates, err = register(reg, m.candidates); err != nil {
		return nil, err
	}
	if m.synthetic, err = register(reg, m.synthetic); err != nil {
		return nil, err
	}
	if m.best, err = register(reg, m.best); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, returning the existing collector if an identical
// one is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *searchMetrics) accepted(added int, best float64) {
	m.candidates.WithLabelValues("accepted").Inc()
	m.synthetic.Add(float64(added))
	m.best.Set(best)
}

func (m *searchMetrics) rejected() {
	m.candidates.WithLabelValues("rejected").Inc()
}
