// Copyright (c) 2026 The reana authors
//
// MIT License

// Package checker defines the contract of the parametric model checker used
// to compute the reliability of a single model, as an expression over the
// reliabilities of its dependencies.
package checker

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrExternalTool is matched by failures of a model checker.
var ErrExternalTool = errors.New("model checker failure")

// ErrUnsupportedModel is returned by a Checker that does not know how to
// analyze a given model.
var ErrUnsupportedModel = errors.New("unsupported model")

// Checker turns a state-transition model into a closed-form reliability
// expression. The expression may only reference the identifiers of the
// dependencies of the model.
type Checker interface {
	ReliabilityExpression(ctx context.Context, model any) (string, error)
}

// Func is an adapter to use an ordinary function as a Checker.
type Func func(ctx context.Context, model any) (string, error)

// ReliabilityExpression calls f(ctx, model).
func (f Func) ReliabilityExpression(ctx context.Context, model any) (string, error) {
	return f(ctx, model)
}

// Expression is a model whose reliability expression is already known, for
// instance because it was computed by an earlier run of a model checker.
type Expression string

// Precomputed is a Checker for models of type Expression. It fails with
// ErrUnsupportedModel on any other kind of model.
type Precomputed struct{}

// ReliabilityExpression returns the expression carried by model.
func (Precomputed) ReliabilityExpression(ctx context.Context, model any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch v := model.(type) {
	case Expression:
		return string(v), nil
	case *Expression:
		if v != nil {
			return string(*v), nil
		}
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedModel, model)
}

// Counting is a Checker that counts the number of calls made, for each model,
// to the Checker it decorates. Models must be comparable.
type Counting struct {
	Checker Checker

	mu    sync.Mutex
	calls map[any]int
	total int
}

// NewCounting returns a Counting decorator for c.
func NewCounting(c Checker) *Counting {
	return &Counting{Checker: c, calls: make(map[any]int)}
}

// ReliabilityExpression forwards the call to the decorated Checker.
func (c *Counting) ReliabilityExpression(ctx context.Context, model any) (string, error) {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = make(map[any]int)
	}
	c.calls[model]++
	c.total++
	c.mu.Unlock()
	return c.Checker.ReliabilityExpression(ctx, model)
}

// Calls returns the number of calls made with model.
func (c *Counting) Calls(model any) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[model]
}

// Total returns the number of calls made so far.
func (c *Counting) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
