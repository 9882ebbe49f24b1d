// Copyright (c) 2026 The reana authors
//
// MIT License

package reana

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/reana-spl/reana/add"
	"github.com/reana-spl/reana/checker"
	"github.com/reana-spl/reana/expression"
	"github.com/reana-spl/reana/rdg"
)

// Analyzer is an analysis session for one product line. It owns the decision
// diagram manager, the feature model and the reliability cache of the session.
// A different feature model requires a new Analyzer. Its methods are safe for
// concurrent use.
type Analyzer struct {
	m       *add.Manager
	solver  *expression.Solver
	checker checker.Checker
	fm      FeatureModel
	cache   *reliabilityCache
	session string
	metrics *metrics
	configs
}

// NewAnalyzer returns a new session for the product line whose feature model
// is read from featureModel, as a UTF-8 encoded logical formula over features.
// The reliability expression of each RDG node is obtained from c.
func NewAnalyzer(featureModel io.Reader, c checker.Checker, options ...Option) (*Analyzer, error) {
	if c == nil {
		return nil, fmt.Errorf("nil model checker")
	}
	cfg := makeconfigs()
	for _, f := range options {
		f(cfg)
	}
	a := &Analyzer{
		checker: c,
		cache:   newReliabilityCache(),
		session: uuid.NewString(),
		configs: *cfg,
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	a.logger = a.logger.With("session", a.session)
	if a.registerer == nil {
		a.registerer = prometheus.NewRegistry()
	}
	a.metrics = newMetrics(a.registerer, a.session)

	src, err := io.ReadAll(featureModel)
	if err != nil {
		return nil, fmt.Errorf("cannot read feature model: %w", err)
	}
	if !utf8.Valid(src) {
		return nil, &FormatError{Input: string(src), Err: fmt.Errorf("feature model is not valid UTF-8")}
	}
	if a.m, err = add.New(a.diagram...); err != nil {
		return nil, err
	}
	if a.solver, err = expression.New(a.m); err != nil {
		return nil, err
	}
	if a.fm, err = BuildFeatureModel(a.solver, string(src)); err != nil {
		return nil, fmt.Errorf("feature model: %w", err)
	}
	a.logger.Info("session started",
		"features", a.m.Varnum(),
		"valid_configurations", a.m.Satcount(a.fm.Diagram()).String())
	return a, nil
}

// Manager returns the decision diagram manager of the session. Presence
// conditions of RDG nodes must be built with it.
func (a *Analyzer) Manager() *add.Manager {
	return a.m
}

// Solver returns the expression solver of the session. It can be used to
// encode presence conditions, for instance with rdg.NewYAMLBuilder.
func (a *Analyzer) Solver() *expression.Solver {
	return a.solver
}

// FeatureModel returns the feature model of the session.
func (a *Analyzer) FeatureModel() FeatureModel {
	return a.fm
}

// Session returns the unique identifier of the session, used in logs and
// metrics.
func (a *Analyzer) Session() string {
	return a.session
}

// Cached returns the reliability of the RDG node with the given identifier,
// if it was already computed.
func (a *Analyzer) Cached(id string) (add.Node, bool) {
	return a.cache.get(id)
}

// Reset drops all the reliabilities computed so far. This is needed if an RDG
// node is replaced by a different node with the same identifier.
func (a *Analyzer) Reset() {
	a.cache.reset()
	a.logger.Debug("cache reset")
}

// ValidConfigurations returns the number of valid configurations of the
// product line.
func (a *Analyzer) ValidConfigurations() *big.Int {
	return a.m.Satcount(a.fm.Diagram())
}

// ************************************************************

// EvaluateReliability returns the family reliability of the RDG with the given
// root: a diagram giving, for each configuration of features, the reliability
// of the corresponding product, and 0 for the configurations that are not
// valid.
//
// Each node of the RDG is evaluated at most once per session, even when it is
// shared by several parents or reached from several roots. The graph is
// checked for cycles before any call to the model checker. Errors are returned
// as is, without partial results: a *ModelCheckerError if the model checker
// fails on a node, a *CycleError, a *FormatError if an expression is
// malformed, and an *UnboundVariableError if an expression references an
// identifier that is not a child of its node.
func (a *Analyzer) EvaluateReliability(ctx context.Context, root *rdg.Node) (add.Node, error) {
	start := time.Now()
	res, err := a.evaluateReliability(ctx, root)
	a.metrics.evaluations.WithLabelValues(status(err)).Inc()
	a.metrics.duration.Observe(time.Since(start).Seconds())
	a.metrics.diagramNodes.Set(float64(a.m.Size()))
	if err != nil {
		a.logger.Info("evaluation failed", "error", err, "duration", time.Since(start))
		return nil, err
	}
	a.logger.Info("evaluation done",
		"root", root.ID(),
		"duration", time.Since(start),
		"cached", a.cache.len(),
		"diagram_nodes", a.m.Nodecount(res))
	return res, nil
}

func (a *Analyzer) evaluateReliability(ctx context.Context, root *rdg.Node) (add.Node, error) {
	order, err := rdg.PostOrder(root)
	if err != nil {
		return nil, err
	}
	a.logger.Info("evaluation started", "root", root.ID(), "nodes", len(order), "concurrency", a.concurrency)

	// Nodes are started in post-order and wait for the reliability of their
	// children. A child always starts before its parents, so the group cannot
	// be filled with nodes waiting for a node that is not started.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	var result *entry
	for _, n := range order {
		if err := gctx.Err(); err != nil {
			break
		}
		e, owner := a.cache.claim(n.ID())
		result = e
		if !owner {
			a.metrics.cacheHits.Inc()
			a.logger.Debug("cache hit", "node", n.ID())
			continue
		}
		a.metrics.cacheMisses.Inc()
		g.Go(func() error {
			res, err := a.compute(gctx, n)
			a.cache.resolve(n.ID(), e, res, err, gctx.Err() != nil)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.await(ctx, root, result)
}

// reliability returns the reliability of n, a child of a node being computed.
// The entry of n was claimed before its parents, by this evaluation or by a
// concurrent one, so it is only computed here when the evaluation that
// claimed it gave up.
func (a *Analyzer) reliability(ctx context.Context, n *rdg.Node) (add.Node, error) {
	e, owner := a.cache.claim(n.ID())
	if !owner {
		return a.await(ctx, n, e)
	}
	a.metrics.cacheMisses.Inc()
	res, err := a.compute(ctx, n)
	a.cache.resolve(n.ID(), e, res, err, ctx.Err() != nil)
	return res, err
}

// await waits for the entry e of node n. If the owner of e was cancelled by
// its own caller, n is evaluated again with ctx.
func (a *Analyzer) await(ctx context.Context, n *rdg.Node, e *entry) (add.Node, error) {
	res, err := e.wait(ctx)
	if err != nil && ctx.Err() == nil && e.abandoned {
		a.logger.Debug("evaluation abandoned by another caller", "node", n.ID())
		return a.reliability(ctx, n)
	}
	return res, err
}

// compute evaluates the reliability of n from the reliability of its
// children.
func (a *Analyzer) compute(ctx context.Context, n *rdg.Node) (add.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	expr, err := a.checker.ReliabilityExpression(ctx, n.Model())
	a.metrics.checkerCalls.WithLabelValues(status(err)).Inc()
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, &ModelCheckerError{NodeID: n.ID(), Err: err}
	}
	a.logger.Debug("model checked", "node", n.ID(), "expression", expr)

	vars, err := a.solver.Variables(expr)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.ID(), err)
	}
	children := n.Children()
	ids := make(map[string]bool, len(children))
	for _, c := range children {
		ids[c.ID()] = true
	}
	for _, v := range vars {
		if !ids[v] {
			return nil, fmt.Errorf("node %q: %w", n.ID(), &UnboundVariableError{Name: v})
		}
	}

	bindings := make(map[string]add.Node, len(children))
	for _, c := range children {
		rel, err := a.reliability(ctx, c)
		if err != nil {
			return nil, err
		}
		presence := c.PresenceCondition()
		if presence == nil {
			presence = a.m.True()
		}
		phi := a.m.Times(presence, rel)
		if phi == nil {
			return nil, fmt.Errorf("node %q: %w", n.ID(), a.m.Err())
		}
		bindings[c.ID()] = phi
	}
	raw, err := a.solver.Solve(expr, bindings)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.ID(), err)
	}
	res := a.m.Times(a.fm.Diagram(), raw)
	if res == nil {
		return nil, fmt.Errorf("node %q: %w", n.ID(), a.m.Err())
	}
	return res, nil
}
