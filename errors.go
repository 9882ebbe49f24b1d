// Copyright (c) 2026 The reana authors
//
// MIT License

package reana

import (
	"fmt"

	"github.com/reana-spl/reana/checker"
	"github.com/reana-spl/reana/expression"
	"github.com/reana-spl/reana/rdg"
)

// Errors returned by an Analyzer can be tested with errors.Is against the
// following values.
var (
	ErrFormat          = expression.ErrFormat
	ErrUnboundVariable = expression.ErrUnboundVariable
	ErrCycleDetected   = rdg.ErrCycleDetected
	ErrExternalTool    = checker.ErrExternalTool
)

type (
	// FormatError reports a malformed feature model or expression.
	FormatError = expression.FormatError
	// UnboundVariableError reports an expression that references an
	// identifier which is not a child of its node.
	UnboundVariableError = expression.UnboundVariableError
	// CycleError reports a cycle in an RDG.
	CycleError = rdg.CycleError
)

// ModelCheckerError reports the failure of the model checker on the model of
// an RDG node.
type ModelCheckerError struct {
	NodeID string
	Err    error
}

func (e *ModelCheckerError) Error() string {
	return fmt.Sprintf("model checker failed on node %q: %s", e.NodeID, e.Err)
}

func (e *ModelCheckerError) Unwrap() error { return e.Err }

func (e *ModelCheckerError) Is(target error) bool { return target == ErrExternalTool }
