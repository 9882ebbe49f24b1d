// Copyright (c) 2026 The reana authors
//
// MIT License

/*
Package reana computes the reliability of a software product line, as a
function of the selection of features, using Algebraic Decision Diagrams
(ADD).

# Basics

A product line is described by a feature model, a logical formula over
features that is true on valid configurations, and by a Reliability
Dependency Graph (RDG). Each node of the RDG is a model whose reliability, as
computed by a parametric model checker, is an expression over the reliability
of its children. Each child is only present in the configurations that
satisfy its presence condition.

An Analyzer is an analysis session for one feature model. Its method
EvaluateReliability returns a diagram giving, for every configuration, the
reliability of the corresponding product, and 0 for invalid configurations.
Results are cached per node identifier, so that shared parts of the RDG are
evaluated only once per session.

	a, err := reana.NewAnalyzer(strings.NewReader("A && (B || C)"), checker.Precomputed{})
	...
	root, err := rdg.NewYAMLBuilder(a.Solver()).Build(ctx, file)
	...
	rel, err := a.EvaluateReliability(ctx, root)
	...
	a.ExportReliability(rel, "", "reliability.dot")

# Concurrency

By default, nodes are evaluated one at a time. With the option
WithConcurrency, independent parts of the RDG are evaluated in parallel; calls
to the model checker may then overlap, while operations on diagrams are
serialized by their Manager.
*/
package reana
