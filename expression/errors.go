// Copyright (c) 2026 The reana authors
//
// MIT License

package expression

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every error caused by a malformed expression or
// formula.
var ErrFormat = errors.New("malformed expression")

// ErrUnboundVariable is matched by errors caused by an identifier that has no
// binding.
var ErrUnboundVariable = errors.New("unbound variable")

// FormatError reports a malformed algebraic expression or boolean formula.
type FormatError struct {
	Input string // The offending text
	Err   error  // The parser diagnostic, if any
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed expression %q", e.Input)
	}
	return fmt.Sprintf("malformed expression %q: %s", e.Input, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// UnboundVariableError reports an identifier of an expression that is not a
// key of the bindings.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("unbound variable %q", e.Name)
}

func (e *UnboundVariableError) Is(target error) bool { return target == ErrUnboundVariable }
