// Copyright (c) 2026 The reana authors
//
// MIT License

package reana

import (
	"fmt"

	"github.com/reana-spl/reana/add"
	"github.com/reana-spl/reana/expression"
)

// FeatureModel is the boolean diagram of the valid configurations of a
// product line: it is 1 on the valid combinations of features and 0 elsewhere.
type FeatureModel struct {
	diagram add.Node
	source  string
}

// BuildFeatureModel encodes the feature model given as a logical formula over
// features, for instance "A && (B || C)", with the Manager of s.
func BuildFeatureModel(s *expression.Solver, source string) (FeatureModel, error) {
	n, err := s.EncodeFormula(source)
	if err != nil {
		return FeatureModel{}, err
	}
	if !s.Manager().IsBoolean(n) {
		return FeatureModel{}, &expression.FormatError{Input: source, Err: fmt.Errorf("not a boolean formula")}
	}
	return FeatureModel{diagram: n, source: source}, nil
}

// Diagram returns the boolean diagram of the feature model.
func (fm FeatureModel) Diagram() add.Node {
	return fm.diagram
}

// Source returns the formula the feature model was built from.
func (fm FeatureModel) Source() string {
	return fm.source
}
