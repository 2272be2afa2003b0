package tree

import "errors"

// ErrNilStrategy is returned when a traversal is given no strategy
var ErrNilStrategy = errors.New("strategy cannot be null")

// Strategy orders the values of a tree
type Strategy[T any] interface {
	Traverse(root *Node[T]) []T
}

// Preorder visits node, left, right
type Preorder[T any] struct{}

func (Preorder[T]) Traverse(root *Node[T]) []T {
	return walk(root, make([]T, 0), preorder)
}

// Inorder visits left, node, right
type Inorder[T any] struct{}

func (Inorder[T]) Traverse(root *Node[T]) []T {
	return walk(root, make([]T, 0), inorder)
}

// Postorder visits left, right, node
type Postorder[T any] struct{}

func (Postorder[T]) Traverse(root *Node[T]) []T {
	return walk(root, make([]T, 0), postorder)
}

type order int

const (
	preorder order = iota
	inorder
	postorder
)

func walk[T any](n *Node[T], out []T, o order) []T {
	if n == nil {
		return out
	}
	if o == preorder {
		out = append(out, n.value)
	}
	out = walk(n.left, out, o)
	if o == inorder {
		out = append(out, n.value)
	}
	out = walk(n.right, out, o)
	if o == postorder {
		out = append(out, n.value)
	}
	return out
}

// Traversal walks trees with a replaceable strategy
type Traversal[T any] struct {
	strategy Strategy[T]
}

func NewTraversal[T any](s Strategy[T]) (*Traversal[T], error) {
	t := &Traversal[T]{}
	if err := t.SetStrategy(s); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Traversal[T]) SetStrategy(s Strategy[T]) error {
	if s == nil {
		return ErrNilStrategy
	}
	t.strategy = s
	return nil
}

// Traverse returns the values of root in the order of the current strategy.
// The empty tree yields an empty slice.
func (t *Traversal[T]) Traverse(root *Node[T]) []T {
	return t.strategy.Traverse(root)
}
