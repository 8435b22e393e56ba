package scope

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/ironvale/cellheap/heap"
	"golang.org/x/exp/slog"
)

// Env is a single lexical scope: a table of named bindings and the blocks that back
// them. An Env owns the blocks of its non-borrowed bindings and tears them down, cell
// by cell, when Free is called. An Env on its own is never synchronized- use Stack, or
// external locking, when scopes are shared.
type Env struct {
	memory      Memory
	deallocator *heap.BlockDeallocator
	logger      *slog.Logger
	bindings    *swiss.Map[string, Value]
}

// Define binds name to a copy of value. Owned values are duplicated into a freshly
// allocated block so the caller's block remains the caller's responsibility; borrowed
// values are bound as-is, still borrowing. If name was already bound, the previous
// binding's block is zeroed and, when owned, released.
func (e *Env) Define(name string, value Value) error {
	copied, err := e.copyValue(value)
	if err != nil {
		return errors.Wrapf(err, "failed to define %q", name)
	}

	e.replace(name, copied)
	return nil
}

// DefineNoCopy binds name directly to value, transferring ownership of owned blocks
// into the scope without duplicating them. If name was already bound, the previous
// binding's block is zeroed and, when owned, released.
func (e *Env) DefineNoCopy(name string, value Value) {
	e.replace(name, value)
}

// Get returns the value bound to name. It returns NotDefinedError (wrapped with the
// variable name) when no such binding exists.
func (e *Env) Get(name string) (Value, error) {
	value, ok := e.bindings.Get(name)
	if !ok {
		return Value{}, errors.Wrapf(NotDefinedError, "variable %q", name)
	}

	return value, nil
}

// Len returns the number of bindings in the scope
func (e *Env) Len() int {
	return e.bindings.Count()
}

// Free tears down the scope. Every owned binding's block is released through the
// deallocator; borrowed blocks are skipped, since their owner is elsewhere. The scope
// is empty afterward and may be reused.
func (e *Env) Free() {
	e.logger.LogAttrs(context.Background(), slog.LevelDebug, "Env::Free",
		slog.Int("bindings", e.bindings.Count()))

	e.bindings.Iter(func(name string, value Value) (stop bool) {
		if value.IsRef() {
			e.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Not freeing borrowed block",
				slog.String("name", name),
				slog.Uint64("base", uint64(value.Block().Base)))
			return false
		}

		e.deallocator.DeallocateBlock(value.Block())
		return false
	})

	e.bindings = swiss.NewMap[string, Value](8)
}

func (e *Env) replace(name string, value Value) {
	previous, ok := e.bindings.Get(name)
	if ok {
		e.zero(previous)
		if !previous.IsRef() {
			e.deallocator.DeallocateBlock(previous.Block())
		}
	}

	e.bindings.Put(name, value)
}

// zero clears the backing bytes of every cell in the value's block
func (e *Env) zero(value Value) {
	block := value.Block()
	for i := 0; i < block.Size; i++ {
		data := e.memory.CellData(block.Base.Offset(i))
		for j := range data {
			data[j] = 0
		}
	}
}

// copyValue duplicates an owned value into a freshly allocated block. Borrowed values
// are not duplicated- the copy borrows the same block.
func (e *Env) copyValue(value Value) (Value, error) {
	if value.IsRef() {
		return value, nil
	}

	block := value.Block()
	base, err := e.memory.Allocate(block.Size)
	if err != nil {
		return Value{}, err
	}

	for i := 0; i < block.Size; i++ {
		copy(e.memory.CellData(base.Offset(i)), e.memory.CellData(block.Base.Offset(i)))
	}

	return NewValue(heap.Block{Base: base, Size: block.Size}), nil
}
