package scope

import (
	"github.com/ironvale/cellheap/heap"
)

// Value is a binding's view of a block of cells. A Value either owns its block or
// borrows a block owned elsewhere. Ownership decides teardown: when the enclosing Env
// dies, owned blocks are released cell by cell and borrowed blocks are left alone.
type Value struct {
	block heap.Block
	ref   bool
}

// NewValue creates a Value that owns the provided block
func NewValue(block heap.Block) Value {
	return Value{block: block}
}

// NewRef creates a Value that borrows the provided block without taking ownership
func NewRef(block heap.Block) Value {
	return Value{block: block, ref: true}
}

// Block returns the block descriptor this value is backed by
func (v Value) Block() heap.Block {
	return v.block
}

// IsRef returns true if this value borrows its block rather than owning it
func (v Value) IsRef() bool {
	return v.ref
}
