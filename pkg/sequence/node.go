package sequence

// This file implements the splay tree that backs a Sequence. Trees are kept
// in in-order position order; there are no keys. Every node caches the size
// of its subtree, so positions can be computed from the sizes along a path.
// Almost every helper begins by splaying its argument to the root, which is
// what keeps the amortized cost of each operation at O(log n).

// Iter is a position in a Sequence. An Iter is the tree node holding an
// element, so it stays valid until that element is removed, however the
// tree is rearranged around it.
type Iter[T any] struct {
	size                int
	parent, left, right *Iter[T]
	value               T

	// seq is set only on the end node of a sequence. The end node is always
	// the last node in order, which is how a node finds its sequence.
	seq *Sequence[T]
}

func newNode[T any](value T) *Iter[T] {
	return &Iter[T]{size: 1, value: value}
}

func (n *Iter[T]) isEnd() bool {
	return n.seq != nil
}

func sizeOf[T any](n *Iter[T]) int {
	if n == nil {
		return 0
	}
	return n.size
}

func (n *Iter[T]) updateSize() {
	n.size = 1 + sizeOf(n.left) + sizeOf(n.right)
}

func isLeftChild[T any](n *Iter[T]) bool {
	return n.parent != nil && n.parent.left == n
}

// rotate lifts n one level, above its parent.
func rotate[T any](n *Iter[T]) {
	p := n.parent
	if p == nil || p == n {
		panic("sequence: rotate called on a root node")
	}
	g := p.parent

	if p.left == n {
		b := n.right
		n.right = p
		p.left = b
		if b != nil {
			b.parent = p
		}
	} else {
		b := n.left
		n.left = p
		p.right = b
		if b != nil {
			b.parent = p
		}
	}

	p.parent = n
	n.parent = g
	if g != nil {
		if g.left == p {
			g.left = n
		} else {
			g.right = n
		}
	}

	p.updateSize()
	n.updateSize()
}

func splay[T any](n *Iter[T]) *Iter[T] {
	for n.parent != nil {
		p := n.parent
		switch {
		case p.parent == nil:
			// zig
			rotate(n)
		case isLeftChild(n) == isLeftChild(p):
			// zig-zig
			rotate(p)
			rotate(n)
		default:
			// zig-zag
			rotate(n)
			rotate(n)
		}
	}
	return n
}

// first returns the leftmost node of the tree containing n, as the new root.
func first[T any](n *Iter[T]) *Iter[T] {
	splay(n)
	for n.left != nil {
		n = n.left
	}
	return splay(n)
}

// last returns the rightmost node of the tree containing n, as the new root.
func last[T any](n *Iter[T]) *Iter[T] {
	splay(n)
	for n.right != nil {
		n = n.right
	}
	return splay(n)
}

// successor returns the node after n, or n itself when n is the last node.
func successor[T any](n *Iter[T]) *Iter[T] {
	splay(n)
	if n.right != nil {
		n = n.right
		for n.left != nil {
			n = n.left
		}
	}
	return splay(n)
}

// predecessor returns the node before n, or n itself when n is the first node.
func predecessor[T any](n *Iter[T]) *Iter[T] {
	splay(n)
	if n.left != nil {
		n = n.left
		for n.right != nil {
			n = n.right
		}
	}
	return splay(n)
}

// rankOf returns the 0-based position of n within its tree.
func rankOf[T any](n *Iter[T]) int {
	splay(n)
	return sizeOf(n.left)
}

// atRank returns the node at position pos in the tree containing n. The
// caller must clamp pos to [0, size-1] first.
func atRank[T any](n *Iter[T], pos int) *Iter[T] {
	splay(n)
	for {
		i := sizeOf(n.left)
		if i == pos {
			break
		}
		if i < pos {
			n = n.right
			pos -= i + 1
		} else {
			n = n.left
		}
		if n == nil {
			panic("sequence: position out of range")
		}
	}
	return splay(n)
}

// treeSize returns the number of nodes in the tree containing n.
func treeSize[T any](n *Iter[T]) int {
	return splay(n).size
}

// findClosest returns the first node of haystack's tree that compares
// strictly greater than needle. It never returns nil: the end node is
// treated as greater than everything and is never handed to cmp.
func findClosest[T any](haystack, needle, end *Iter[T], cmp IterCompareFunc[T]) *Iter[T] {
	var best *Iter[T]
	c := 0
	for h := splay(haystack); h != nil; {
		best = h
		if h == end {
			c = 1
		} else {
			c = cmp(h, needle)
		}
		// Keep going right on equality so the last equal node is found.
		if c > 0 {
			h = h.left
		} else {
			h = h.right
		}
	}
	if best != end && c <= 0 {
		best = successor(best)
	}
	return best
}

// cut splits the tree containing n in two. n and everything after it stay
// in n's tree; everything before it becomes a separate tree.
func cut[T any](n *Iter[T]) {
	splay(n)
	if n.left != nil {
		n.left.parent = nil
	}
	n.left = nil
	n.updateSize()
}

// joinBefore places the whole tree containing nw immediately before anchor.
// nw must not be in anchor's tree.
func joinBefore[T any](anchor, nw *Iter[T]) {
	splay(anchor)
	nw = first(nw)
	if nw.left != nil {
		panic("sequence: joined tree has a node before its first node")
	}

	if anchor.left != nil {
		anchor.left.parent = nw
	}
	nw.left = anchor.left
	nw.parent = anchor
	anchor.left = nw

	nw.updateSize()
	anchor.updateSize()
}

// joinAfter places the whole tree containing nw immediately after anchor.
// nw must not be in anchor's tree.
func joinAfter[T any](anchor, nw *Iter[T]) {
	splay(anchor)
	nw = last(nw)
	if nw.right != nil {
		panic("sequence: joined tree has a node after its last node")
	}

	if anchor.right != nil {
		anchor.right.parent = nw
	}
	nw.right = anchor.right
	nw.parent = anchor
	anchor.right = nw

	nw.updateSize()
	anchor.updateSize()
}

// unlink takes n out of its tree, leaving it as a single-node tree and its
// former neighbours joined to each other.
func unlink[T any](n *Iter[T]) {
	splay(n)
	left, right := n.left, n.right

	n.parent, n.left, n.right = nil, nil, nil
	n.updateSize()

	switch {
	case right != nil:
		right.parent = nil
		right = first(right)
		right.left = left
		if left != nil {
			left.parent = right
			right.updateSize()
		}
	case left != nil:
		left.parent = nil
	}
}

func insertSorted[T any](haystack, nw, end *Iter[T], cmp IterCompareFunc[T]) {
	joinBefore(findClosest(haystack, nw, end, cmp), nw)
}

// freeTree detaches every node of the tree containing n, running destroy
// on the value of each node other than an end node. Detached nodes no
// longer belong to any sequence, so stale iterators are detected.
func freeTree[T any](n *Iter[T], destroy func(T)) {
	var zero T
	stack := []*Iter[T]{splay(n)}
	for len(stack) > 0 {
		n = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.right != nil {
			stack = append(stack, n.right)
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}

		if !n.isEnd() && destroy != nil {
			destroy(n.value)
		}
		n.parent, n.left, n.right = nil, nil, nil
		n.size = 1
		n.value = zero
		n.seq = nil
	}
}

// rootOf walks up to the root without changing the shape of the tree.
func rootOf[T any](n *Iter[T]) *Iter[T] {
	for n.parent != nil && n.parent != n {
		n = n.parent
	}
	return n
}

// peekSequence returns the sequence the tree containing n belongs to, or nil
// for a detached node. Unlike splaying to the last node, it leaves the tree
// untouched, so it is safe to call while a search is walking the tree.
func peekSequence[T any](n *Iter[T]) *Sequence[T] {
	n = rootOf(n)
	for n.right != nil {
		n = n.right
	}
	return n.seq
}

func height[T any](root *Iter[T]) int {
	type frame struct {
		n     *Iter[T]
		depth int
	}
	if root == nil {
		return 0
	}
	h := 0
	stack := []frame{{root, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > h {
			h = f.depth
		}
		if f.n.left != nil {
			stack = append(stack, frame{f.n.left, f.depth + 1})
		}
		if f.n.right != nil {
			stack = append(stack, frame{f.n.right, f.depth + 1})
		}
	}
	return h
}
