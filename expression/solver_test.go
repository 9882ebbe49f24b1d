// Copyright (c) 2026 The reana authors
//
// MIT License

package expression_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/reana-spl/reana/add"
	"github.com/reana-spl/reana/expression"
)

func newSolver(t *testing.T) (*add.Manager, *expression.Solver) {
	t.Helper()
	is := is.New(t)
	m, err := add.New()
	is.NoErr(err)
	s, err := expression.New(m)
	is.NoErr(err)
	return m, s
}

func TestSolveConstants(t *testing.T) {
	is := is.New(t)
	m, s := newSolver(t)

	tests := []struct {
		expr     string
		expected float64
	}{
		{"0.9", 0.9},
		{"1", 1},
		{"2u", 2},
		{"true", 1},
		{"1 - 0.25", 0.75},
		{"-0.5 * 2.0", -1},
		{"pow(0.5, 3)", 0.125},
		{"pow(0.5, 0)", 1},
		{"1.0 / 4.0", 0.25},
		{"0.0 / 0.0", 0},
	}
	for _, tt := range tests {
		n, err := s.Solve(tt.expr, nil)
		is.NoErr(err)
		v, ok := m.Value(n)
		is.True(ok)              // constant expressions give terminals
		is.Equal(v, tt.expected) // value of the expression
	}
}

func TestSolveBindings(t *testing.T) {
	is := is.New(t)
	m, s := newSolver(t)

	b := m.Var("B")
	c := m.Var("C")
	bindings := map[string]add.Node{
		"X": m.Times(b, m.Constant(0.9)),
		"Y": m.Times(c, m.Constant(0.9)),
	}
	rel, err := s.Solve("X + Y - X*Y", bindings)
	is.NoErr(err)

	is.Equal(m.Eval(rel, map[string]bool{"B": true}), 0.9)
	is.Equal(m.Eval(rel, map[string]bool{"C": true}), 0.9)
	is.Equal(m.Eval(rel, map[string]bool{}), 0.0)
	x := 0.9
	is.Equal(m.Eval(rel, map[string]bool{"B": true, "C": true}), x+x-float64(x*x))

	again, err := s.Solve("X + Y - X*Y", bindings)
	is.NoErr(err)
	is.True(m.Equal(rel, again)) // Solve is deterministic

	ite, err := s.Solve("X != 0.0 ? X : Y", bindings)
	is.NoErr(err)
	is.Equal(m.Eval(ite, map[string]bool{"C": true}), 0.9)
}

func TestSolveErrors(t *testing.T) {
	is := is.New(t)
	m, s := newSolver(t)
	bindings := map[string]add.Node{"X": m.Constant(0.5)}

	_, err := s.Solve("X * Z", bindings)
	var unbound *expression.UnboundVariableError
	is.True(errors.As(err, &unbound))
	is.Equal(unbound.Name, "Z")
	is.True(errors.Is(err, expression.ErrUnboundVariable))

	for _, expr := range []string{"", "X +", "X.field", "[X]", "foo(X)", "pow(X, -1)", "pow(X, X)", "X.pow(2)", "size(X)", "X > 0.5 ? 1 : 2"} {
		_, err := s.Solve(expr, bindings)
		is.True(errors.Is(err, expression.ErrFormat)) // malformed or unsupported expression
		var format *expression.FormatError
		is.True(errors.As(err, &format))
		is.Equal(format.Input, expr)
	}
	is.True(!m.Errored()) // parse errors do not affect the manager
}

func TestEncodeFormula(t *testing.T) {
	is := is.New(t)
	m, s := newSolver(t)

	fm, err := s.EncodeFormula("A && (B || C)")
	is.NoErr(err)
	is.True(m.IsBoolean(fm))
	is.Equal(m.Variables(), []string{"A", "B", "C"})
	is.Equal(m.Satcount(fm).Int64(), int64(3))
	is.Equal(m.Eval(fm, map[string]bool{"A": true, "B": true}), 1.0)
	is.Equal(m.Eval(fm, map[string]bool{"B": true, "C": true}), 0.0)

	cnf, err := s.EncodeFormula("(A || !B) && (B == C) && true")
	is.NoErr(err)
	is.True(m.IsBoolean(cnf))
	is.Equal(m.Eval(cnf, map[string]bool{"A": true, "B": true, "C": true}), 1.0)
	is.Equal(m.Eval(cnf, map[string]bool{"B": true}), 0.0)

	for _, text := range []string{"A + B", "A && 0.5", "A &&", "!"} {
		_, err := s.EncodeFormula(text)
		is.True(errors.Is(err, expression.ErrFormat))
	}
}

func TestVariables(t *testing.T) {
	is := is.New(t)
	_, s := newSolver(t)

	vars, err := s.Variables("Y * X + pow(X, 2) - 0.5")
	is.NoErr(err)
	is.Equal(vars, []string{"X", "Y"})

	vars, err = s.Variables("0.99")
	is.NoErr(err)
	is.Equal(len(vars), 0)

	_, err = s.Variables("X +")
	is.True(errors.Is(err, expression.ErrFormat))
}

func TestSolveLongExpression(t *testing.T) {
	is := is.New(t)
	m, s := newSolver(t)
	const size = 1000
	terms := make([]string, size)
	bindings := make(map[string]add.Node, size)
	for i := range terms {
		terms[i] = fmt.Sprintf("X%d", i)
		bindings[terms[i]] = m.True()
	}
	bindings["X500"] = m.Var("F")

	rel, err := s.Solve(strings.Join(terms, " * "), bindings)
	is.NoErr(err)
	is.True(m.Equal(rel, m.Var("F")))

	rel, err = s.Solve(strings.Join(terms, " + "), bindings)
	is.NoErr(err)
	is.Equal(m.Eval(rel, map[string]bool{"F": true}), float64(size))

	vars, err := s.Variables(strings.Join(terms, " - "))
	is.NoErr(err)
	is.Equal(len(vars), size)
}
