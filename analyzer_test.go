// Copyright (c) 2026 The reana authors
//
// MIT License

package reana

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/reana-spl/reana/add"
	"github.com/reana-spl/reana/checker"
	"github.com/reana-spl/reana/rdg"
)

var features = []string{"A", "B", "C"}

// configurations returns all the assignments of features.
func configurations() []map[string]bool {
	res := []map[string]bool{}
	for k := 0; k < 1<<len(features); k++ {
		env := map[string]bool{}
		for i, f := range features {
			env[f] = k&(1<<i) != 0
		}
		res = append(res, env)
	}
	return res
}

func newAnalyzer(t *testing.T, c checker.Checker, options ...Option) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(strings.NewReader("A && (B || C)"), c, options...)
	if err != nil {
		t.Fatalf("cannot create analyzer: %s", err)
	}
	return a
}

func presence(t *testing.T, a *Analyzer, formula string) add.Node {
	t.Helper()
	n, err := a.Solver().EncodeFormula(formula)
	if err != nil {
		t.Fatalf("cannot encode %q: %s", formula, err)
	}
	return n
}

// parallelRDG returns the RDG of two redundant components X and Y, present
// with features B and C respectively.
func parallelRDG(t *testing.T, a *Analyzer) *rdg.Node {
	x := rdg.NewNode("X", checker.Expression("0.9"), presence(t, a, "B"))
	y := rdg.NewNode("Y", checker.Expression("0.9"), presence(t, a, "C"))
	return rdg.NewNode("R", checker.Expression("X + Y - X*Y"), nil, x, y)
}

func TestParallelComponents(t *testing.T) {
	is := is.New(t)
	a := newAnalyzer(t, checker.Precomputed{})
	is.Equal(a.ValidConfigurations().Int64(), int64(3))

	rel, err := a.EvaluateReliability(context.Background(), parallelRDG(t, a))
	is.NoErr(err)

	m := a.Manager()
	r := 0.9
	is.Equal(m.Eval(rel, map[string]bool{"A": true, "B": true}), 0.9)
	is.Equal(m.Eval(rel, map[string]bool{"A": true, "C": true}), 0.9)
	is.Equal(m.Eval(rel, map[string]bool{"A": true, "B": true, "C": true}), r+r-float64(r*r))
	is.Equal(m.Eval(rel, map[string]bool{"A": true}), 0.0) // invalid configuration
	for _, env := range configurations() {
		if !env["A"] {
			is.Equal(m.Eval(rel, env), 0.0) // A is mandatory
		}
	}
	cached, ok := a.Cached("R")
	is.True(ok)
	is.True(m.Equal(cached, rel))
}

// diamond returns an RDG where Z is shared by X and Y.
func diamond(t *testing.T, a *Analyzer) *rdg.Node {
	z := rdg.NewNode("Z", checker.Expression("0.99"), nil)
	x := rdg.NewNode("X", checker.Expression("0.9 * Z"), presence(t, a, "B"), z)
	y := rdg.NewNode("Y", checker.Expression("0.8 * Z"), presence(t, a, "C"), z)
	return rdg.NewNode("R", checker.Expression("X + Y - X*Y"), nil, x, y)
}

func TestCacheOnce(t *testing.T) {
	is := is.New(t)
	c := checker.NewCounting(checker.Precomputed{})
	a := newAnalyzer(t, c)
	root := diamond(t, a)
	ctx := context.Background()

	rel, err := a.EvaluateReliability(ctx, root)
	is.NoErr(err)
	for _, expr := range []string{"0.99", "0.9 * Z", "0.8 * Z", "X + Y - X*Y"} {
		is.Equal(c.Calls(checker.Expression(expr)), 1) // each node is model checked once
	}
	is.Equal(testutil.ToFloat64(a.metrics.cacheMisses), 4.0)
	is.Equal(testutil.ToFloat64(a.metrics.cacheHits), 0.0) // nothing to reuse yet
	is.Equal(testutil.ToFloat64(a.metrics.checkerCalls.WithLabelValues("ok")), 4.0)

	again, err := a.EvaluateReliability(ctx, root)
	is.NoErr(err)
	is.Equal(c.Total(), 4)
	is.True(a.Manager().Equal(rel, again))
	is.Equal(testutil.ToFloat64(a.metrics.cacheHits), 4.0)

	_, err = a.EvaluateReliability(ctx, root.Children()[0])
	is.NoErr(err)
	is.Equal(c.Total(), 4) // X is shared between roots
	is.Equal(testutil.ToFloat64(a.metrics.cacheHits), 6.0)
	is.Equal(testutil.ToFloat64(a.metrics.cacheMisses), 4.0)
	is.Equal(testutil.ToFloat64(a.metrics.evaluations.WithLabelValues("ok")), 3.0)

	a.Reset()
	_, ok := a.Cached("Z")
	is.True(!ok)
	reset, err := a.EvaluateReliability(ctx, root)
	is.NoErr(err)
	is.Equal(c.Total(), 8)
	is.True(a.Manager().Equal(rel, reset)) // evaluation is deterministic
}

func TestCycleRejection(t *testing.T) {
	is := is.New(t)
	c := checker.NewCounting(checker.Precomputed{})
	a := newAnalyzer(t, c)

	// B depends on a node with the identifier of A
	b := rdg.NewNode("B", checker.Expression("A"), nil, rdg.NewNode("A", checker.Expression("1"), nil))
	root := rdg.NewNode("A", checker.Expression("B"), nil, b)
	_, err := a.EvaluateReliability(context.Background(), root)
	is.True(errors.Is(err, ErrCycleDetected))
	var cycle *CycleError
	is.True(errors.As(err, &cycle))
	is.Equal(cycle.Path, []string{"A", "B", "A"})
	is.Equal(c.Total(), 0) // no model checking before the graph is validated
	is.Equal(testutil.ToFloat64(a.metrics.evaluations.WithLabelValues("error")), 1.0)
}

func TestLeaf(t *testing.T) {
	is := is.New(t)
	a := newAnalyzer(t, checker.Precomputed{})
	m := a.Manager()

	rel, err := a.EvaluateReliability(context.Background(), rdg.NewNode("L", checker.Expression("0.95"), nil))
	is.NoErr(err)
	is.True(m.Equal(rel, m.Times(a.FeatureModel().Diagram(), m.Constant(0.95))))
	is.Equal(m.Terminals(rel), []float64{0, 0.95})
}

func TestMasking(t *testing.T) {
	is := is.New(t)
	a := newAnalyzer(t, checker.Precomputed{})
	m := a.Manager()

	// the constant term gives 1 where X is absent
	x := rdg.NewNode("X", checker.Expression("0.9"), presence(t, a, "B"))
	root := rdg.NewNode("R", checker.Expression("1 - X"), nil, x)
	rel, err := a.EvaluateReliability(context.Background(), root)
	is.NoErr(err)
	fm := a.FeatureModel().Diagram()
	for _, env := range configurations() {
		if m.Eval(fm, env) == 0 {
			is.Equal(m.Eval(rel, env), 0.0) // invalid configurations have reliability 0
		}
	}
	is.Equal(m.Eval(rel, map[string]bool{"A": true, "C": true}), 1.0)
}

func TestDeterminism(t *testing.T) {
	is := is.New(t)
	a1 := newAnalyzer(t, checker.Precomputed{})
	a2 := newAnalyzer(t, checker.Precomputed{}, WithConcurrency(4), WithDiagramOptions(add.Nodesize(1000), add.Cachesize(1000)))
	r1, err := a1.EvaluateReliability(context.Background(), diamond(t, a1))
	is.NoErr(err)
	r2, err := a2.EvaluateReliability(context.Background(), diamond(t, a2))
	is.NoErr(err)
	for _, env := range configurations() {
		is.Equal(a1.Manager().Eval(r1, env), a2.Manager().Eval(r2, env))
	}
}

func TestUnboundVariable(t *testing.T) {
	is := is.New(t)
	a := newAnalyzer(t, checker.Precomputed{})

	x := rdg.NewNode("X", checker.Expression("0.9"), nil)
	root := rdg.NewNode("R", checker.Expression("X * W"), nil, x)
	_, err := a.EvaluateReliability(context.Background(), root)
	is.True(errors.Is(err, ErrUnboundVariable))
	var unbound *UnboundVariableError
	is.True(errors.As(err, &unbound))
	is.Equal(unbound.Name, "W")
	_, ok := a.Cached("R")
	is.True(!ok) // failed nodes are not cached
	_, ok = a.Cached("X")
	is.True(ok)

	_, err = a.EvaluateReliability(context.Background(), rdg.NewNode("M", checker.Expression("0.9 *"), nil))
	is.True(errors.Is(err, ErrFormat))
}

func TestModelCheckerFailure(t *testing.T) {
	is := is.New(t)
	failure := errors.New("state space too large")
	fail := true
	var mu sync.Mutex
	c := checker.Func(func(ctx context.Context, model any) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if model == checker.Expression("0.8 * Z") && fail {
			return "", failure
		}
		return checker.Precomputed{}.ReliabilityExpression(ctx, model)
	})
	a := newAnalyzer(t, c)
	root := diamond(t, a)

	_, err := a.EvaluateReliability(context.Background(), root)
	is.True(errors.Is(err, ErrExternalTool))
	is.True(errors.Is(err, failure)) // the cause is kept
	var mcerr *ModelCheckerError
	is.True(errors.As(err, &mcerr))
	is.Equal(mcerr.NodeID, "Y")
	_, ok := a.Cached("Y")
	is.True(!ok)
	_, ok = a.Cached("R")
	is.True(!ok)
	is.Equal(testutil.ToFloat64(a.metrics.checkerCalls.WithLabelValues("error")), 1.0)

	mu.Lock()
	fail = false
	mu.Unlock()
	rel, err := a.EvaluateReliability(context.Background(), root)
	is.NoErr(err) // failures are not cached
	is.True(rel != nil)
}

func TestConcurrentEvaluation(t *testing.T) {
	is := is.New(t)
	slow := checker.Func(func(ctx context.Context, model any) (string, error) {
		time.Sleep(time.Millisecond)
		return checker.Precomputed{}.ReliabilityExpression(ctx, model)
	})
	c := checker.NewCounting(slow)
	a := newAnalyzer(t, c, WithConcurrency(8))

	// a shared component used by many redundant servers
	shared := rdg.NewNode("S", checker.Expression("0.999"), nil)
	children := []*rdg.Node{}
	terms := []string{}
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("N%d", i)
		children = append(children, rdg.NewNode(id, checker.Expression(fmt.Sprintf("0.%d * S", 50+i)), presence(t, a, "B || C"), shared))
		terms = append(terms, id)
	}
	root := rdg.NewNode("R", checker.Expression(strings.Join(terms, " * ")), nil, children...)

	var wg sync.WaitGroup
	results := make([]add.Node, 4)
	errs := make([]error, 4)
	for k := range results {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			results[k], errs[k] = a.EvaluateReliability(context.Background(), root)
		}(k)
	}
	wg.Wait()
	for k := range results {
		is.NoErr(errs[k])
		is.True(a.Manager().Equal(results[0], results[k]))
	}
	is.Equal(c.Total(), 22) // every node is model checked once

	seq := newAnalyzer(t, checker.Precomputed{})
	shared = rdg.NewNode("S", checker.Expression("0.999"), nil)
	children = children[:0]
	for i := 0; i < 20; i++ {
		children = append(children, rdg.NewNode(fmt.Sprintf("N%d", i), checker.Expression(fmt.Sprintf("0.%d * S", 50+i)), presence(t, seq, "B || C"), shared))
	}
	expected, err := seq.EvaluateReliability(context.Background(), rdg.NewNode("R", checker.Expression(strings.Join(terms, " * ")), nil, children...))
	is.NoErr(err)
	for _, env := range configurations() {
		is.Equal(seq.Manager().Eval(expected, env), a.Manager().Eval(results[0], env))
	}
}

func TestCancellation(t *testing.T) {
	is := is.New(t)
	c := checker.NewCounting(checker.Precomputed{})
	a := newAnalyzer(t, c, WithConcurrency(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.EvaluateReliability(ctx, diamond(t, a))
	is.True(errors.Is(err, context.Canceled))
	is.Equal(c.Total(), 0)
	_, ok := a.Cached("Z")
	is.True(!ok)

	// a checker that returns the error of its context
	ctx, cancel = context.WithCancel(context.Background())
	stop := checker.Func(func(ctx context.Context, model any) (string, error) {
		cancel()
		return "", ctx.Err()
	})
	b := newAnalyzer(t, stop)
	_, err = b.EvaluateReliability(ctx, rdg.NewNode("L", checker.Expression("0.9"), nil))
	is.True(errors.Is(err, context.Canceled))
	is.True(!errors.Is(err, ErrExternalTool)) // cancellation is not a model checker failure
	var mcerr *ModelCheckerError
	is.True(!errors.As(err, &mcerr))
}

func TestCancelledCallerDoesNotFailOthers(t *testing.T) {
	is := is.New(t)
	var once sync.Once
	started := make(chan struct{})
	blocking := checker.Func(func(ctx context.Context, model any) (string, error) {
		first := false
		if model == checker.Expression("0.99") {
			once.Do(func() { first = true })
		}
		if first {
			// the first evaluation of Z only ends with its context
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		}
		return checker.Precomputed{}.ReliabilityExpression(ctx, model)
	})
	a := newAnalyzer(t, blocking, WithConcurrency(2))
	root := diamond(t, a)

	ctx, cancel := context.WithCancel(context.Background())
	var errA error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, errA = a.EvaluateReliability(ctx, root)
	}()
	<-started

	var relB add.Node
	var errB error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		relB, errB = a.EvaluateReliability(context.Background(), root)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	<-done
	wg.Wait()

	is.True(errors.Is(errA, context.Canceled))
	is.True(!errors.Is(errA, ErrExternalTool))
	is.NoErr(errB) // B does not depend on the context of A
	x, z := 0.9, 0.99
	is.Equal(a.Manager().Eval(relB, map[string]bool{"A": true, "B": true}), x*z)
	cached, ok := a.Cached("R")
	is.True(ok)
	is.True(a.Manager().Equal(cached, relB))
}

func TestLongExpression(t *testing.T) {
	is := is.New(t)
	a := newAnalyzer(t, checker.Precomputed{})
	const size = 300
	children := make([]*rdg.Node, size)
	terms := make([]string, size)
	for i := range children {
		terms[i] = fmt.Sprintf("X%d", i)
		children[i] = rdg.NewNode(terms[i], checker.Expression("1"), nil)
	}
	children[150] = rdg.NewNode("X150", checker.Expression("0.5"), presence(t, a, "B"))
	root := rdg.NewNode("R", checker.Expression(strings.Join(terms, " * ")), nil, children...)

	rel, err := a.EvaluateReliability(context.Background(), root)
	is.NoErr(err)
	m := a.Manager()
	is.Equal(m.Eval(rel, map[string]bool{"A": true, "B": true}), 0.5)
	is.Equal(m.Eval(rel, map[string]bool{"A": true, "C": true}), 0.0) // X150 is absent
}

func TestNewAnalyzerErrors(t *testing.T) {
	is := is.New(t)
	for _, src := range []string{"A && (B ||", "A + B", "", string([]byte{0xff, 0xfe})} {
		_, err := NewAnalyzer(strings.NewReader(src), checker.Precomputed{})
		is.True(errors.Is(err, ErrFormat)) // malformed feature model
	}
	_, err := NewAnalyzer(strings.NewReader("A"), nil)
	is.True(err != nil)
}

func TestExport(t *testing.T) {
	is := is.New(t)
	a := newAnalyzer(t, checker.Precomputed{})
	rel, err := a.EvaluateReliability(context.Background(), parallelRDG(t, a))
	is.NoErr(err)

	var buf bytes.Buffer
	is.NoErr(a.WriteReliability(&buf, rel, ""))
	is.True(strings.Contains(buf.String(), `label="Family Reliability";`))
	is.True(strings.Contains(buf.String(), `label="0.9"`))

	path := filepath.Join(t.TempDir(), "reliability.dot")
	is.NoErr(a.ExportReliability(rel, "Parallel", path))
	content, err := os.ReadFile(path)
	is.NoErr(err)
	is.True(strings.HasPrefix(string(content), "digraph G {"))
	is.True(strings.Contains(string(content), `label="Parallel";`))

	is.True(a.ExportReliability(rel, "", filepath.Join(t.TempDir(), "missing", "file.dot")) != nil)
}

func TestObservability(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := prometheus.NewRegistry()
	a := newAnalyzer(t, checker.Precomputed{}, WithLogger(logger), WithRegisterer(reg))
	b := newAnalyzer(t, checker.Precomputed{}, WithRegisterer(reg)) // sessions share the registry
	is.True(a.Session() != b.Session())

	root := diamond(t, a)
	_, err := a.EvaluateReliability(context.Background(), root)
	is.NoErr(err)
	_, err = a.EvaluateReliability(context.Background(), root)
	is.NoErr(err)
	out := buf.String()
	is.True(strings.Contains(out, "session="+a.Session()))
	is.True(strings.Contains(out, "cache hit"))
	is.True(strings.Contains(out, "evaluation done"))

	n, err := testutil.GatherAndCount(reg, "reana_cache_misses_total")
	is.NoErr(err)
	is.Equal(n, 2) // one series per session
	is.True(testutil.ToFloat64(a.metrics.diagramNodes) > 0)
}
