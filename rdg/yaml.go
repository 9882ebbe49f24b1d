// Copyright (c) 2026 The reana authors
//
// MIT License

package rdg

import (
	"context"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/reana-spl/reana/add"
	"github.com/reana-spl/reana/checker"
)

// yamlGraph is the document read by YAMLBuilder, for instance:
//
//	root: R
//	nodes:
//	  - id: R
//	    expression: X + Y - X*Y
//	    children: [X, Y]
//	  - id: X
//	    presence: B
//	    expression: "0.9"
//	  - id: Y
//	    presence: C
//	    expression: "0.9"
type yamlGraph struct {
	Root  string     `yaml:"root" validate:"required"`
	Nodes []yamlNode `yaml:"nodes" validate:"required,min=1,dive"`
}

type yamlNode struct {
	ID         string   `yaml:"id" validate:"required"`
	Presence   string   `yaml:"presence"`
	Expression string   `yaml:"expression" validate:"required"`
	Children   []string `yaml:"children" validate:"dive,required"`
}

// YAMLBuilder is a Builder for RDGs described in YAML. The model attached to
// each node is the reliability expression of the document, as a
// checker.Expression, to be used with checker.Precomputed. Presence conditions
// are boolean formulas; an absent condition means that the node is always
// present.
type YAMLBuilder struct {
	encoder  FormulaEncoder
	validate *validator.Validate
}

// NewYAMLBuilder returns a YAMLBuilder that encodes presence conditions with
// enc, usually an *expression.Solver.
func NewYAMLBuilder(enc FormulaEncoder) *YAMLBuilder {
	return &YAMLBuilder{encoder: enc, validate: validator.New()}
}

// Build decodes the RDG in r and returns its root.
func (b *YAMLBuilder) Build(ctx context.Context, r io.Reader) (*Node, error) {
	var doc yamlGraph
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse RDG")
	}
	if err := b.validate.Struct(&doc); err != nil {
		return nil, errors.Wrap(err, "invalid RDG")
	}
	specs := make(map[string]yamlNode, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if _, ok := specs[n.ID]; ok {
			return nil, &DuplicateIDError{ID: n.ID}
		}
		specs[n.ID] = n
	}
	if _, ok := specs[doc.Root]; !ok {
		return nil, errors.Wrapf(ErrUnknownNode, "root %q", doc.Root)
	}

	// nodes are built bottom-up, since they are immutable
	built := make(map[string]*Node, len(specs))
	state := make(map[string]int, len(specs))
	var build func(id string, path []string) (*Node, error)
	build = func(id string, path []string) (*Node, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n, ok := built[id]; ok {
			return n, nil
		}
		spec, ok := specs[id]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownNode, "child %q of node %q", id, path[len(path)-1])
		}
		path = append(path, id)
		if state[id] == inprogress {
			start := 0
			for path[start] != id {
				start++
			}
			return nil, &CycleError{Path: append([]string(nil), path[start:]...)}
		}
		state[id] = inprogress
		children := make([]*Node, len(spec.Children))
		for k, c := range spec.Children {
			child, err := build(c, path)
			if err != nil {
				return nil, err
			}
			children[k] = child
		}
		var presence add.Node
		if spec.Presence != "" {
			var err error
			if presence, err = b.encoder.EncodeFormula(spec.Presence); err != nil {
				return nil, errors.Wrapf(err, "presence condition of node %q", id)
			}
		}
		n := NewNode(id, checker.Expression(spec.Expression), presence, children...)
		state[id] = done
		built[id] = n
		return n, nil
	}
	return build(doc.Root, nil)
}
