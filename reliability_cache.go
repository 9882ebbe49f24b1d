// Copyright (c) 2026 The reana authors
//
// MIT License

package reana

import (
	"context"
	"sync"

	"github.com/reana-spl/reana/add"
)

// entry is the future reliability of an RDG node. The channel done is closed
// once res, err and abandoned are set; they never change afterwards.
type entry struct {
	done      chan struct{}
	res       add.Node
	err       error
	abandoned bool // the owner stopped because its own context was done
}

func (e *entry) wait(ctx context.Context) (add.Node, error) {
	select {
	case <-e.done:
		return e.res, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *entry) resolved() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// reliabilityCache maps the identifier of RDG nodes to their reliability. Each
// identifier is computed at most once: the first caller to claim an
// identifier is its owner and must resolve it, other callers wait.
type reliabilityCache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func newReliabilityCache() *reliabilityCache {
	return &reliabilityCache{entries: make(map[string]*entry)}
}

// claim returns the entry for id, creating it if needed. The boolean is true
// if the caller is the owner of a new entry.
func (c *reliabilityCache) claim(id string) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		return e, false
	}
	e := &entry{done: make(chan struct{})}
	c.entries[id] = e
	return e, true
}

// resolve sets the result of an entry owned by the caller and wakes up the
// waiters. Failed entries are dropped, so that a later evaluation may try
// again. An entry is abandoned when its owner failed because the context of
// the owner was done; waiters with a live context compute it again.
func (c *reliabilityCache) resolve(id string, e *entry, res add.Node, err error, abandoned bool) {
	c.mu.Lock()
	if err != nil && c.entries[id] == e {
		delete(c.entries, id)
	}
	c.mu.Unlock()
	e.res, e.err = res, err
	e.abandoned = err != nil && abandoned
	close(e.done)
}

// get returns the reliability of id if it was successfully computed.
func (c *reliabilityCache) get(id string) (add.Node, bool) {
	c.mu.Lock()
	e, ok := c.entries[id]
	c.mu.Unlock()
	if !ok || !e.resolved() || e.err != nil {
		return nil, false
	}
	return e.res, true
}

func (c *reliabilityCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *reliabilityCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}
