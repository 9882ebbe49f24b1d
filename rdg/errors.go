// Copyright (c) 2026 The reana authors
//
// MIT License

package rdg

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycleDetected is matched by errors caused by a cycle in the
	// children relation.
	ErrCycleDetected = errors.New("cycle detected")
	// ErrNilNode is returned when a graph contains a nil node.
	ErrNilNode = errors.New("nil node")
	// ErrDuplicateID is matched by errors caused by two different nodes that
	// share the same identifier.
	ErrDuplicateID = errors.New("duplicate node identifier")
	// ErrUnknownNode is returned when a graph description references an
	// identifier that is not defined.
	ErrUnknownNode = errors.New("unknown node")
)

// CycleError reports a cycle in the children relation. Path lists the
// identifiers along the cycle, starting and ending with the same one.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Path, " -> "))
}

func (e *CycleError) Is(target error) bool { return target == ErrCycleDetected }

// DuplicateIDError reports two distinct nodes with the same identifier.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate node identifier %q", e.ID)
}

func (e *DuplicateIDError) Is(target error) bool { return target == ErrDuplicateID }
