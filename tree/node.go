// Package tree holds an immutable binary tree and the walks over it.
package tree

// Node is a binary tree node. The nil *Node is the empty tree and stands in
// for every absent child.
type Node[T any] struct {
	value       T
	left, right *Node[T]
}

// Empty returns the empty tree
func Empty[T any]() *Node[T] {
	return nil
}

// Leaf returns a node without children
func Leaf[T any](v T) *Node[T] {
	return &Node[T]{value: v}
}

// NewNode returns a node with the given children. Either child may be empty.
func NewNode[T any](v T, left, right *Node[T]) *Node[T] {
	return &Node[T]{value: v, left: left, right: right}
}

func (n *Node[T]) IsEmpty() bool {
	return n == nil
}

// Value returns the value held by n, or the zero value for the empty tree
func (n *Node[T]) Value() T {
	if n == nil {
		var zero T
		return zero
	}
	return n.value
}

func (n *Node[T]) Left() *Node[T] {
	if n == nil {
		return nil
	}
	return n.left
}

func (n *Node[T]) Right() *Node[T] {
	if n == nil {
		return nil
	}
	return n.right
}
