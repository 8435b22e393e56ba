package heap

import (
	"github.com/ironvale/cellheap"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
)

// Block describes a contiguous run of Size cells beginning at Base. A Block is not an
// owning object- it is a plain descriptor whose accuracy is the caller's responsibility.
// Nothing in this package verifies that the described cells were actually reserved
// as a single allocation.
type Block struct {
	Base Address
	Size int
}

var _ cellheap.Validatable = Block{}

// End returns the Address one past the final cell of the block. A zero-size block's
// End equals its Base.
func (b Block) End() Address {
	return b.Base.Offset(b.Size)
}

// Contains returns true if addr identifies one of the block's cells.
func (b Block) Contains(addr Address) bool {
	return addr >= b.Base && addr < b.End()
}

// Validate performs consistency checks on the descriptor. It cannot verify the
// descriptor against the underlying memory system, only that the pair of values is
// self-consistent.
func (b Block) Validate() error {
	if err := cellheap.CheckNonNegative(b.Size, "block size"); err != nil {
		return err
	}

	if b.Base == NoCell && b.Size > 0 {
		return errors.New("a block with one or more cells must have a real base address")
	}

	return nil
}

// BlockJsonData populates a json object with information about this block. The NoCell
// sentinel is written as null rather than as its numeric value.
func (b Block) BlockJsonData(json jwriter.ObjectState) {
	if b.Base == NoCell {
		json.Name("BaseAddress").Null()
	} else {
		json.Name("BaseAddress").Int(int(b.Base))
	}
	json.Name("Cells").Int(b.Size)
}
