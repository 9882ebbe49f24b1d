// Copyright (c) 2026 The reana authors
//
// MIT License

package rdg

const (
	unvisited = iota
	inprogress
	done
)

// PostOrder returns the nodes reachable from root, each one exactly once, with
// children before their parents. Children are visited from left to right, so
// the result is deterministic. We use an explicit stack, so that the depth of
// the graph is not limited by the size of the call stack.
//
// Nodes are identified by their ID. PostOrder fails with a *CycleError if an
// identifier is reached again while its descendants are still being visited,
// with a *DuplicateIDError if two different nodes share an identifier, and
// with ErrNilNode if it finds a nil node.
func PostOrder(root *Node) ([]*Node, error) {
	if root == nil {
		return nil, ErrNilNode
	}
	type frame struct {
		node *Node
		next int // index of the next child to visit
	}
	state := make(map[string]int)
	owner := make(map[string]*Node)
	res := []*Node{}
	stack := []frame{{node: root}}
	state[root.id] = inprogress
	owner[root.id] = root
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.node.children) {
			state[top.node.id] = done
			res = append(res, top.node)
			stack = stack[:len(stack)-1]
			continue
		}
		child := top.node.children[top.next]
		top.next++
		if child == nil {
			return nil, ErrNilNode
		}
		switch state[child.id] {
		case done:
			if owner[child.id] != child {
				return nil, &DuplicateIDError{ID: child.id}
			}
			continue
		case inprogress:
			path := []string{}
			for k := len(stack) - 1; k >= 0; k-- {
				path = append(path, stack[k].node.id)
				if stack[k].node.id == child.id {
					break
				}
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return nil, &CycleError{Path: append(path, child.id)}
		}
		state[child.id] = inprogress
		owner[child.id] = child
		stack = append(stack, frame{node: child})
	}
	return res, nil
}
