// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

import (
	"fmt"
	"log"
)

// Error returns the error status of the ADD. We return an empty string if
// there are no errors.
func (m *Manager) Error() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.error == nil {
		return ""
	}
	return m.error.Error()
}

// Errored returns true if there was an error during a computation.
func (m *Manager) Errored() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.error != nil
}

// Err returns the error status of the ADD, or nil. Once set, the status is
// sticky: every following operation returns a nil Node.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.error
}

func (m *Manager) seterror(err error, format string, a ...interface{}) Node {
	msg := fmt.Sprintf(format, a...)
	if m.error != nil {
		m.error = fmt.Errorf("%s; %w", msg, m.error)
		return nil
	}
	m.error = fmt.Errorf("%s: %w", msg, err)
	if _DEBUG {
		log.Println(m.error)
	}
	return nil
}

// checkptr returns an error if n is not a live node of m, or if m is already
// in an error state.
func (m *Manager) checkptr(n Node) error {
	if m.error != nil {
		return m.error
	}
	if n == nil {
		return ErrInvalidNode
	}
	if *n < 0 || *n >= len(m.nodes) || m.nodes[*n].low == -1 {
		return ErrInvalidNode
	}
	return nil
}
