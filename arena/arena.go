package arena

import (
	"context"

	"github.com/dolthub/swiss"
	"github.com/ironvale/cellheap"
	"github.com/ironvale/cellheap/heap"
	"github.com/ironvale/cellheap/internal/mmap"
	"github.com/ironvale/cellheap/internal/utils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// blockSpan is the arena's record of one outstanding allocation. live counts the cells
// of the block that have not yet been released.
type blockSpan struct {
	size int
	live int
}

// CellArena is a first-fit, cell-granular allocator. It hands out contiguous blocks of
// cells via Allocate and takes them back one cell at a time through ReleaseCell, making
// it the production implementation of heap.CellReleaser. The arena never merges or
// moves blocks- a block ceases to exist when its final cell comes back.
//
// The arena synchronizes internally unless ArenaCreateExternallySynchronized is set.
type CellArena struct {
	logger *slog.Logger
	flags  CreateFlags
	mutex  utils.OptionalRWMutex

	base   heap.Address
	store  []byte
	mapped bool

	cells  *cellTable
	blocks *swiss.Map[heap.Address, *blockSpan]
}

var _ heap.CellReleaser = (*CellArena)(nil)
var _ cellheap.Validatable = (*CellArena)(nil)

// CellCount returns the number of cells the arena was created with
func (a *CellArena) CellCount() int {
	return a.cells.len()
}

// FreeCellCount returns the number of cells not currently part of a live block
func (a *CellArena) FreeCellCount() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.cells.freeCount
}

// BlockCount returns the number of blocks with at least one unreleased cell
func (a *CellArena) BlockCount() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.blocks.Count()
}

// IsEmpty will return true if this arena has no live blocks
func (a *CellArena) IsEmpty() bool {
	return a.BlockCount() == 0
}

// Allocate reserves a contiguous block of size cells and returns the Address of its
// first cell. The arena places blocks first-fit: the lowest-addressed run of free cells
// large enough for the request wins. Allocate returns OutOfCellsError (possibly
// wrapped) when no such run exists- the arena does not compact, so this can happen even
// when FreeCellCount is well above size.
//
// A size of zero denotes a block with no cells: the arena hands back heap.NoCell
// without reserving anything, and releasing such a block is a no-op by definition.
func (a *CellArena) Allocate(size int) (heap.Address, error) {
	if err := cellheap.CheckNonNegative(size, "size"); err != nil {
		return heap.NoCell, err
	}

	if size == 0 {
		return heap.NoCell, nil
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	start, ok := a.cells.findRun(size)
	if !ok {
		return heap.NoCell, errors.WithMessagef(OutOfCellsError, "requested %d cells with %d free", size, a.cells.freeCount)
	}

	a.cells.reserve(start, size)
	base := a.base.Offset(start)
	a.blocks.Put(base, &blockSpan{size: size, live: size})

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "CellArena::Allocate",
		slog.Uint64("base", uint64(base)),
		slog.Int("cells", size))

	cellheap.DebugValidate(unlockedValidate{a})
	return base, nil
}

// ReleaseCell returns the single cell identified by addr to the arena. The cell must
// belong to a live block; releasing a free cell or an address outside the arena is
// undefined by the primitive's contract, and this implementation makes it a silent
// no-op in production builds. When the final cell of a block comes back, the block's
// record is dropped and its span becomes available to Allocate again.
//
// Released cells are stamped with a poison pattern in debug builds so that stale writes
// can be caught later by CheckCorruption.
func (a *CellArena) ReleaseCell(addr heap.Address) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	offset := int(int64(addr) - int64(a.base))
	owner := a.cells.owner(offset)
	if owner == freeCell {
		return
	}

	a.cells.release(offset)
	cellheap.PoisonCells(a.store, offset*cellheap.CellStride, cellheap.CellStride)

	base := a.base.Offset(int(owner))
	span, ok := a.blocks.Get(base)
	if !ok {
		return
	}

	span.live--
	if span.live == 0 {
		a.blocks.Delete(base)
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "    Block fully released",
			slog.Uint64("base", uint64(base)),
			slog.Int("cells", span.size))
	}

	cellheap.DebugValidate(unlockedValidate{a})
}

// CellData returns the backing-store bytes for the single cell identified by addr. The
// slice aliases the arena's store and is only safe to use while the cell's block is
// live and the caller has exclusive access to it.
func (a *CellArena) CellData(addr heap.Address) []byte {
	offset := int(int64(addr)-int64(a.base)) * cellheap.CellStride
	return a.store[offset : offset+cellheap.CellStride]
}

// VisitAllRegions will call the provided callback once for each live block and each
// maximal run of free cells, in ascending address order.
func (a *CellArena) VisitAllRegions(handleRegion func(base heap.Address, size int, free bool) error) error {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.visitAllRegions(handleRegion)
}

func (a *CellArena) visitAllRegions(handleRegion func(base heap.Address, size int, free bool) error) error {
	offset := 0
	for offset < a.cells.len() {
		owner := a.cells.owner(offset)

		if owner == freeCell {
			runEnd := offset
			for runEnd < a.cells.len() && a.cells.owner(runEnd) == freeCell {
				runEnd++
			}

			err := handleRegion(a.base.Offset(offset), runEnd-offset, true)
			if err != nil {
				return err
			}

			offset = runEnd
			continue
		}

		// Cells of a partially-released block still map to the block's starting
		// offset, so walk to the end of the span rather than trusting the
		// registered size
		spanEnd := offset
		for spanEnd < a.cells.len() && a.cells.owner(spanEnd) == owner {
			spanEnd++
		}

		err := handleRegion(a.base.Offset(offset), spanEnd-offset, false)
		if err != nil {
			return err
		}

		offset = spanEnd
	}

	return nil
}

// AddDetailedStatistics sums this arena's allocation statistics into the statistics
// currently present in the provided cellheap.DetailedStatistics object.
//
// Block figures come from walking the cell table, so a block whose interior cells
// were released out of order contributes one entry per surviving fragment and
// BlockCount can exceed the registry-backed count reported by AddStatistics. Blocks
// torn down in descending cell order never split this way.
func (a *CellArena) AddDetailedStatistics(stats *cellheap.DetailedStatistics) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	stats.ArenaCount++
	stats.ArenaCells += a.cells.len()

	_ = a.visitAllRegions(func(base heap.Address, size int, free bool) error {
		if free {
			stats.AddFreeRange(size)
		} else {
			stats.AddBlock(size)
		}

		return nil
	})
}

// AddStatistics sums this arena's allocation statistics into the statistics currently
// present in the provided cellheap.Statistics object.
func (a *CellArena) AddStatistics(stats *cellheap.Statistics) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	stats.ArenaCount++
	stats.ArenaCells += a.cells.len()
	stats.BlockCount += a.blocks.Count()
	stats.BlockCells += a.cells.len() - a.cells.freeCount
}

// ArenaJsonData populates a json object with information about this arena, including
// one entry per live block and free range
func (a *CellArena) ArenaJsonData(json jwriter.ObjectState) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	json.Name("TotalCells").Int(a.cells.len())
	json.Name("FreeCells").Int(a.cells.freeCount)
	json.Name("Blocks").Int(a.blocks.Count())

	arrayState := json.Name("Regions").Array()
	defer arrayState.End()

	_ = a.visitAllRegions(func(base heap.Address, size int, free bool) error {
		obj := arrayState.Object()
		defer obj.End()

		obj.Name("Base").Int(int(base))
		obj.Name("Cells").Int(size)
		obj.Name("Free").Bool(free)

		return nil
	})
}

// DebugLogAllBlocks writes one log line through logFunc for every live block. Depending
// on arena size this can be slow and should only be used for diagnostic purposes.
func (a *CellArena) DebugLogAllBlocks(logger *slog.Logger, logFunc func(log *slog.Logger, base heap.Address, size int, live int)) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	a.blocks.Iter(func(base heap.Address, span *blockSpan) (stop bool) {
		logFunc(logger, base, span.size, span.live)
		return false
	})
}

// unlockedValidate exposes the arena's consistency checks to cellheap.DebugValidate
// from paths that already hold the arena's mutex
type unlockedValidate struct {
	arena *CellArena
}

func (v unlockedValidate) Validate() error {
	return v.arena.validate()
}

// Validate performs internal consistency checks on the arena's bookkeeping. These
// checks walk the full cell table. When the implementation is functioning correctly, it
// should not be possible for this method to return an error, but this may assist in
// diagnosing issues with the implementation.
func (a *CellArena) Validate() error {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.validate()
}

func (a *CellArena) validate() error {
	freeCount := 0
	liveByBlock := make(map[heap.Address]int)

	for offset := 0; offset < a.cells.len(); offset++ {
		owner := a.cells.owner(offset)
		if owner == freeCell {
			freeCount++
			continue
		}

		if int(owner) > offset {
			return errors.Errorf("cell %d claims to belong to the later block at offset %d", offset, owner)
		}

		liveByBlock[a.base.Offset(int(owner))]++
	}

	if freeCount != a.cells.freeCount {
		return errors.Errorf("the arena believes %d cells are free, but %d actually are", a.cells.freeCount, freeCount)
	}

	if len(liveByBlock) != a.blocks.Count() {
		return errors.Errorf("%d blocks are registered, but cells belong to %d distinct blocks", a.blocks.Count(), len(liveByBlock))
	}

	var err error
	a.blocks.Iter(func(base heap.Address, span *blockSpan) (stop bool) {
		live, ok := liveByBlock[base]
		if !ok {
			err = errors.Errorf("the block at %#x is registered, but owns no cells", uint64(base))
			return true
		}

		if live != span.live {
			err = errors.Errorf("the block at %#x should have %d live cells, but has %d", uint64(base), span.live, live)
			return true
		}

		if span.live > span.size {
			err = errors.Errorf("the block at %#x has more live cells than its size of %d", uint64(base), span.size)
			return true
		}

		return false
	})

	return err
}

// CheckCorruption verifies that the poison pattern stamped into released cells is still
// intact. It returns nil when every free cell holds the pattern. This walk is fairly
// expensive and so should only be run as part of some sort of diagnostic regime.
//
// Bear in mind that poison is only written when cellheap is built with the build flag
// `debug_cell_heap`. This method will not return an error when that flag is absent, but
// it is expensive regardless of build flags and so should only be run when
// cellheap.PoisonEnabled is true.
//
// Cells that have never been allocated are not poisoned and are skipped.
func (a *CellArena) CheckCorruption() error {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	for offset := 0; offset < a.cells.len(); offset++ {
		if a.cells.owner(offset) != freeCell {
			continue
		}

		byteOffset := offset * cellheap.CellStride
		if a.touched(byteOffset) && !cellheap.VerifyPoison(a.store, byteOffset, cellheap.CellStride) {
			return errors.Errorf("the free cell at offset %d has been written to after release", offset)
		}
	}

	return nil
}

// touched reports whether the cell at byteOffset has ever been released. Never-allocated
// cells are still zero-filled, which the poison pattern is not.
func (a *CellArena) touched(byteOffset int) bool {
	for i := 0; i < cellheap.CellStride; i++ {
		if a.store[byteOffset+i] != 0 {
			return true
		}
	}

	return false
}

// Destroy releases the arena's backing store. The arena must not be used afterward.
// Destroying an arena that still has live blocks is permitted- the blocks simply
// disappear with the store.
func (a *CellArena) Destroy() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.mapped {
		err := mmap.Unmap(a.store)
		if err != nil {
			return errors.Wrap(err, "failed to unmap the arena's backing store")
		}
	}

	a.store = nil
	return nil
}
