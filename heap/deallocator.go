package heap

import (
	"context"

	"github.com/ironvale/cellheap"
	"golang.org/x/exp/slog"
)

// BlockDeallocator tears down blocks of cells by driving a single-cell release primitive.
// It retains no state about the blocks it is asked to release: each Deallocate call is
// independent, and the caller is responsible for ensuring the descriptor passed in names
// a real, exclusively-held allocation. The deallocator is fully synchronous- once a call
// begins it runs to completion, so callers must keep the block unreachable from other
// goroutines for the duration.
type BlockDeallocator struct {
	releaser CellReleaser
	logger   *slog.Logger
}

// Deallocate releases every cell in the size-cell block beginning at base, issuing
// exactly one ReleaseCell call per cell. Cells are released in descending offset order:
// the final cell of the block (base + size - 1) goes first and the cell at base goes
// last. A size of zero releases nothing.
//
// The return value is always 0 and means only that the loop ran to completion- it is not
// a verified-success code. There is no failure path and no validation here: a size that
// disagrees with the block's true length, or a base that does not name a real
// allocation, is undefined behavior at the level of the underlying primitive.
func (d *BlockDeallocator) Deallocate(base Address, size int) int {
	cellheap.DebugCheckNonNegative(size, "size")
	d.logger.LogAttrs(context.Background(), slog.LevelDebug, "BlockDeallocator::Deallocate",
		slog.Uint64("base", uint64(base)),
		slog.Int("cells", size))

	for remaining := size; remaining > 0; remaining-- {
		d.releaser.ReleaseCell(base.Offset(remaining - 1))
	}

	return 0
}

// DeallocateBlock releases every cell described by block. See Deallocate.
func (d *BlockDeallocator) DeallocateBlock(block Block) int {
	return d.Deallocate(block.Base, block.Size)
}
