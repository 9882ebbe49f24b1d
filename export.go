// Copyright (c) 2026 The reana authors
//
// MIT License

package reana

import (
	"io"

	"github.com/reana-spl/reana/add"
)

// DefaultLabel is the label of exported diagrams when none is given.
const DefaultLabel = "Family Reliability"

// ExportReliability writes the diagram n, usually the result of
// EvaluateReliability, in the GraphViz DOT format in the file at path. We use
// the standard output if path is "-".
func (a *Analyzer) ExportReliability(n add.Node, label, path string) error {
	if label == "" {
		label = DefaultLabel
	}
	if err := a.m.FPrintDot(path, label, n); err != nil {
		return err
	}
	a.logger.Debug("reliability exported", "path", path, "label", label)
	return nil
}

// WriteReliability is like ExportReliability but writes to w.
func (a *Analyzer) WriteReliability(w io.Writer, n add.Node, label string) error {
	if label == "" {
		label = DefaultLabel
	}
	return a.m.PrintDot(w, label, n)
}
