package sequence

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Height returns the height of the tree behind s. It does not change the
// shape of the tree.
func (s *Sequence[T]) Height() int {
	if !s.usable("height") {
		return 0
	}
	return height(rootOf(s.end))
}

// Check walks the whole tree and returns every broken invariant found, or
// nil when the tree is consistent.
func (s *Sequence[T]) Check() error {
	if s == nil || s.end == nil {
		return errors.New("sequence: nil or freed sequence")
	}

	var result *multierror.Error
	if s.end.seq != s {
		result = multierror.Append(result, errors.New("end node does not refer to its sequence"))
	}

	root := rootOf(s.end)
	stack := []*Iter[T]{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.parent == n {
			result = multierror.Append(result, fmt.Errorf("node %p is its own parent", n))
		}
		if want := 1 + sizeOf(n.left) + sizeOf(n.right); n.size != want {
			result = multierror.Append(result, fmt.Errorf("node %p has size %d, want %d", n, n.size, want))
		}
		if n.isEnd() && n != s.end {
			result = multierror.Append(result, fmt.Errorf("node %p is the end node of another sequence", n))
		}
		for _, c := range []*Iter[T]{n.left, n.right} {
			if c == nil || c == n {
				continue
			}
			if c.parent != n {
				result = multierror.Append(result, fmt.Errorf("node %p does not point back to its parent %p", c, n))
				continue
			}
			stack = append(stack, c)
		}
	}

	n := root
	for n.right != nil && n.right != n {
		n = n.right
	}
	if n != s.end {
		result = multierror.Append(result, errors.New("end node is not the last node"))
	}

	return result.ErrorOrNil()
}
