// Copyright (c) 2026 The reana authors
//
// MIT License

package reana

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	checkerCalls *prometheus.CounterVec
	evaluations  *prometheus.CounterVec
	duration     prometheus.Histogram
	diagramNodes prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer, session string) *metrics {
	labels := prometheus.Labels{"session": session}
	return &metrics{
		cacheHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "reana_cache_hits_total",
			Help:        "Number of RDG nodes already computed, or in progress, when an evaluation reached them",
			ConstLabels: labels,
		}),
		cacheMisses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "reana_cache_misses_total",
			Help:        "Number of RDG nodes whose reliability had to be computed",
			ConstLabels: labels,
		}),
		checkerCalls: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        "reana_model_checker_calls_total",
				Help:        "Number of calls to the model checker",
				ConstLabels: labels,
			},
			[]string{"status"},
		),
		evaluations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        "reana_evaluations_total",
				Help:        "Number of family reliability evaluations",
				ConstLabels: labels,
			},
			[]string{"status"},
		),
		duration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:        "reana_evaluation_duration_seconds",
			Help:        "Duration of family reliability evaluations in seconds",
			Buckets:     []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 10.0, 60.0},
			ConstLabels: labels,
		}),
		diagramNodes: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name:        "reana_diagram_nodes",
			Help:        "Number of live nodes in the decision diagram table after the last evaluation",
			ConstLabels: labels,
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
