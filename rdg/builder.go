// Copyright (c) 2026 The reana authors
//
// MIT License

package rdg

import (
	"context"
	"io"

	"github.com/reana-spl/reana/add"
)

// Builder extracts an RDG from an external model description, such as a set
// of behavioral UML diagrams, and returns its root.
type Builder interface {
	Build(ctx context.Context, r io.Reader) (*Node, error)
}

// BuilderFunc is an adapter to use an ordinary function as a Builder.
type BuilderFunc func(ctx context.Context, r io.Reader) (*Node, error)

// Build calls f(ctx, r).
func (f BuilderFunc) Build(ctx context.Context, r io.Reader) (*Node, error) {
	return f(ctx, r)
}

// FormulaEncoder turns a boolean formula over features into a diagram. It is
// used by builders to encode presence conditions.
type FormulaEncoder interface {
	EncodeFormula(text string) (add.Node, error)
}
