// Copyright (c) 2026 The reana authors
//
// MIT License

// Package expression evaluates algebraic expressions and boolean formulas
// symbolically, as algebraic decision diagrams.
//
// Expressions use the syntax of the Common Expression Language (CEL), which
// covers the C-style arithmetic and logical operators produced by parametric
// model checkers and found in feature model files. Identifiers stand for
// diagrams: in Solve they are looked up in a map of bindings, and in
// EncodeFormula they are feature variables of the Manager.
package expression

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/types"

	"github.com/reana-spl/reana/add"
)

// Solver evaluates expressions over the diagrams of a single Manager. It is
// safe for concurrent use.
type Solver struct {
	m   *add.Manager
	env *cel.Env
}

// New returns a Solver that builds its results in m.
func New(m *add.Manager) (*Solver, error) {
	if m == nil {
		return nil, fmt.Errorf("nil manager")
	}
	// model checkers print long flat sums and products, which the parser
	// nests one level per operator
	env, err := cel.NewEnv(cel.ParserRecursionLimit(-1), cel.ParserExpressionSizeLimit(-1))
	if err != nil {
		return nil, fmt.Errorf("cannot create expression environment: %w", err)
	}
	return &Solver{m: m, env: env}, nil
}

// Manager returns the Manager in which results are built.
func (s *Solver) Manager() *add.Manager {
	return s.m
}

// Solve evaluates expr, replacing each identifier with the diagram it is bound
// to. Supported constructs are numeric and boolean literals, the operators
// + - * / (binary and unary minus), && || ! == != and ?:, and the function
// pow(x, k) where k is a non-negative integer literal. Boolean operators read
// any non-zero value as true.
func (s *Solver) Solve(expr string, bindings map[string]add.Node) (add.Node, error) {
	e, err := s.parse(expr)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]add.Node)
	lookup := func(name string) (add.Node, error) {
		if n, ok := seen[name]; ok {
			return n, nil
		}
		n, ok := bindings[name]
		if !ok || n == nil {
			return nil, &UnboundVariableError{Name: name}
		}
		seen[name] = n
		return n, nil
	}
	ev := evaluator{m: s.m, input: expr, lookup: lookup}
	return ev.eval(e)
}

// EncodeFormula returns the boolean diagram of a logical formula over feature
// variables, such as "A && (B || !C)". Identifiers are declared as variables
// of the Manager, in their order of first occurrence, if needed. Arithmetic is
// not allowed, so that the result only has terminals 0 and 1.
func (s *Solver) EncodeFormula(text string) (add.Node, error) {
	e, err := s.parse(text)
	if err != nil {
		return nil, err
	}
	if err := s.m.Declare(identifiers(e)...); err != nil {
		return nil, err
	}
	lookup := func(name string) (add.Node, error) {
		if n := s.m.Var(name); n != nil {
			return n, nil
		}
		return nil, s.m.Err()
	}
	ev := evaluator{m: s.m, input: text, lookup: lookup, boolean: true}
	return ev.eval(e)
}

// Variables returns the distinct identifiers of expr, sorted by name.
func (s *Solver) Variables(expr string) ([]string, error) {
	e, err := s.parse(expr)
	if err != nil {
		return nil, err
	}
	res := identifiers(e)
	sort.Strings(res)
	return res, nil
}

func (s *Solver) parse(text string) (ast.Expr, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &FormatError{Input: text, Err: fmt.Errorf("empty expression")}
	}
	a, iss := s.env.Parse(text)
	if err := iss.Err(); err != nil {
		return nil, &FormatError{Input: text, Err: err}
	}
	return a.NativeRep().Expr(), nil
}

// identifiers returns the distinct identifiers of e in their order of first
// occurrence, from left to right.
func identifiers(e ast.Expr) []string {
	res := []string{}
	seen := map[string]bool{}
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch e.Kind() {
		case ast.IdentKind:
			if name := e.AsIdent(); !seen[name] {
				seen[name] = true
				res = append(res, name)
			}
		case ast.CallKind:
			c := e.AsCall()
			if c.IsMemberFunction() {
				walk(c.Target())
			}
			for _, arg := range c.Args() {
				walk(arg)
			}
		}
	}
	walk(e)
	return res
}

// ************************************************************

type evaluator struct {
	m       *add.Manager
	input   string
	lookup  func(string) (add.Node, error)
	boolean bool // only logical constructs are allowed
}

func (ev *evaluator) unsupported(format string, a ...interface{}) error {
	return &FormatError{Input: ev.input, Err: fmt.Errorf(format, a...)}
}

// check turns a nil result of the Manager into an error.
func (ev *evaluator) check(n add.Node) (add.Node, error) {
	if n == nil {
		if err := ev.m.Err(); err != nil {
			return nil, err
		}
		return nil, add.ErrInvalidNode
	}
	return n, nil
}

func (ev *evaluator) eval(e ast.Expr) (add.Node, error) {
	switch e.Kind() {
	case ast.LiteralKind:
		return ev.literal(e)
	case ast.IdentKind:
		return ev.lookup(e.AsIdent())
	case ast.CallKind:
		return ev.call(e.AsCall())
	case ast.SelectKind:
		return nil, ev.unsupported("field selection is not supported")
	case ast.ListKind, ast.MapKind, ast.StructKind:
		return nil, ev.unsupported("aggregate literals are not supported")
	case ast.ComprehensionKind:
		return nil, ev.unsupported("macros are not supported")
	}
	return nil, ev.unsupported("unsupported construct")
}

func (ev *evaluator) literal(e ast.Expr) (add.Node, error) {
	switch v := e.AsLiteral().(type) {
	case types.Bool:
		return ev.m.From(bool(v)), nil
	case types.Double:
		if ev.boolean {
			return nil, ev.unsupported("numeric literal %g in formula", float64(v))
		}
		return ev.check(ev.m.Constant(float64(v)))
	case types.Int:
		if ev.boolean {
			return nil, ev.unsupported("numeric literal %d in formula", int64(v))
		}
		return ev.check(ev.m.Constant(float64(v)))
	case types.Uint:
		if ev.boolean {
			return nil, ev.unsupported("numeric literal %d in formula", uint64(v))
		}
		return ev.check(ev.m.Constant(float64(v)))
	}
	return nil, ev.unsupported("unsupported literal %v", e.AsLiteral())
}

func (ev *evaluator) args(c ast.CallExpr, arity int) ([]add.Node, error) {
	if arity >= 0 && len(c.Args()) != arity {
		return nil, ev.unsupported("wrong number of arguments for %s", c.FunctionName())
	}
	res := make([]add.Node, len(c.Args()))
	for k, arg := range c.Args() {
		n, err := ev.eval(arg)
		if err != nil {
			return nil, err
		}
		res[k] = n
	}
	return res, nil
}

func (ev *evaluator) call(c ast.CallExpr) (add.Node, error) {
	if c.IsMemberFunction() {
		return nil, ev.unsupported("method %s is not supported", c.FunctionName())
	}
	switch c.FunctionName() {
	case operators.LogicalAnd:
		a, err := ev.args(c, -1)
		if err != nil {
			return nil, err
		}
		return ev.check(ev.m.And(a...))
	case operators.LogicalOr:
		a, err := ev.args(c, -1)
		if err != nil {
			return nil, err
		}
		return ev.check(ev.m.Or(a...))
	case operators.LogicalNot:
		a, err := ev.args(c, 1)
		if err != nil {
			return nil, err
		}
		return ev.check(ev.m.Not(a[0]))
	case operators.Equals:
		a, err := ev.args(c, 2)
		if err != nil {
			return nil, err
		}
		return ev.check(ev.m.Equiv(a[0], a[1]))
	case operators.NotEquals:
		a, err := ev.args(c, 2)
		if err != nil {
			return nil, err
		}
		return ev.check(ev.m.Xor(a[0], a[1]))
	case operators.Conditional:
		a, err := ev.args(c, 3)
		if err != nil {
			return nil, err
		}
		return ev.check(ev.m.Ite(a[0], a[1], a[2]))
	}
	if ev.boolean {
		return nil, ev.unsupported("operator %s is not allowed in a formula", c.FunctionName())
	}
	switch c.FunctionName() {
	case operators.Add:
		a, err := ev.args(c, 2)
		if err != nil {
			return nil, err
		}
		return ev.check(ev.m.Plus(a...))
	case operators.Subtract:
		a, err := ev.args(c, 2)
		if err != nil {
			return nil, err
		}
		return ev.check(ev.m.Minus(a[0], a[1]))
	case operators.Multiply:
		a, err := ev.args(c, 2)
		if err != nil {
			return nil, err
		}
		return ev.check(ev.m.Times(a...))
	case operators.Divide:
		a, err := ev.args(c, 2)
		if err != nil {
			return nil, err
		}
		return ev.check(ev.m.Divide(a[0], a[1]))
	case operators.Negate:
		a, err := ev.args(c, 1)
		if err != nil {
			return nil, err
		}
		return ev.check(ev.m.Negate(a[0]))
	case "pow":
		return ev.pow(c)
	}
	return nil, ev.unsupported("unknown function %s", c.FunctionName())
}

// pow computes x^k by repeated squaring; k must be a non-negative integer
// literal.
func (ev *evaluator) pow(c ast.CallExpr) (add.Node, error) {
	if len(c.Args()) != 2 || c.Args()[1].Kind() != ast.LiteralKind {
		return nil, ev.unsupported("pow expects a base and an integer literal exponent")
	}
	var k int64
	switch v := c.Args()[1].AsLiteral().(type) {
	case types.Int:
		k = int64(v)
	case types.Uint:
		k = int64(v)
	case types.Double:
		if float64(v) != math.Trunc(float64(v)) {
			return nil, ev.unsupported("non integer exponent %g", float64(v))
		}
		k = int64(v)
	default:
		return nil, ev.unsupported("pow expects an integer exponent")
	}
	if k < 0 {
		return nil, ev.unsupported("negative exponent %d", k)
	}
	x, err := ev.eval(c.Args()[0])
	if err != nil {
		return nil, err
	}
	res := ev.m.True()
	for ; k > 0; k >>= 1 {
		if k&1 == 1 {
			if res, err = ev.check(ev.m.Times(res, x)); err != nil {
				return nil, err
			}
		}
		if k > 1 {
			if x, err = ev.check(ev.m.Times(x, x)); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}
