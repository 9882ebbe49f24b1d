// Copyright (c) 2026 The reana authors
//
// MIT License

package reana

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reana-spl/reana/add"
)

// configs stores the parameters of an Analyzer
type configs struct {
	logger      *slog.Logger          // Structured logger; discards everything by default
	registerer  prometheus.Registerer // Where session metrics are registered; a private registry by default
	concurrency int                   // Maximal number of nodes evaluated at the same time
	diagram     []add.Option          // Options for the decision diagram manager
}

// Option is the type of configuration options accepted by NewAnalyzer.
type Option func(*configs)

func makeconfigs() *configs {
	return &configs{
		concurrency: 1,
	}
}

// WithLogger is a configuration option. Used as a parameter in NewAnalyzer it
// sets the logger used for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(c *configs) {
		c.logger = logger
	}
}

// WithRegisterer is a configuration option. Used as a parameter in NewAnalyzer
// it sets the registry for the metrics of the session. Metrics carry a
// "session" label, so that several analyzers can share the same registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *configs) {
		c.registerer = reg
	}
}

// WithConcurrency is a configuration option. Used as a parameter in
// NewAnalyzer it sets the maximal number of RDG nodes that can be evaluated
// concurrently. With the default value (1) nodes are evaluated one at a time,
// children first and from left to right.
func WithConcurrency(n int) Option {
	return func(c *configs) {
		if n < 1 {
			n = 1
		}
		c.concurrency = n
	}
}

// WithDiagramOptions is a configuration option. Used as a parameter in
// NewAnalyzer it passes options to the decision diagram manager of the
// session, for instance to limit its size.
func WithDiagramOptions(options ...add.Option) Option {
	return func(c *configs) {
		c.diagram = append(c.diagram, options...)
	}
}
