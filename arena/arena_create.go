package arena

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/ironvale/cellheap"
	"github.com/ironvale/cellheap/heap"
	"github.com/ironvale/cellheap/internal/mmap"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific arena behaviors to activate or deactivate
type CreateFlags int32

const (
	// ArenaCreateExternallySynchronized ensures that this arena will not be synchronized
	// internally. The consumer must guarantee it is used from only one goroutine at a time
	// or is synchronized by some other mechanism, but performance may improve because
	// internal mutexes are not used.
	ArenaCreateExternallySynchronized CreateFlags = 1 << iota
	// ArenaCreateMappedStore causes the arena's backing store to be reserved with an
	// anonymous memory mapping instead of on the Go heap. Creation fails on platforms
	// without mapping support.
	ArenaCreateMappedStore
)

const (
	// defaultBaseAddress is the address handed out for cell 0 when none is provided via
	// CreateOptions. It is nonzero so that arithmetic mistakes around the zero Address
	// surface quickly.
	defaultBaseAddress heap.Address = 0x1000
)

// CreateOptions contains optional settings when creating an arena
type CreateOptions struct {
	// Flags indicates specific arena behaviors to activate or deactivate
	Flags CreateFlags

	// BaseAddress is the Address the arena assigns to its first cell. When zero,
	// defaultBaseAddress is used. The value is opaque to consumers and only needs to be
	// unique across arenas whose addresses share a releaser.
	BaseAddress heap.Address

	// Logger receives debug-level tracing of allocations and releases. When nil,
	// slog.Default() is used
	Logger *slog.Logger
}

// New creates an arena that manages cellCount cells.
//
// cellCount - The number of cells the arena will hand out. Must be greater than zero.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(cellCount int, options CreateOptions) (*CellArena, error) {
	if cellCount <= 0 {
		return nil, errors.Newf("an arena requires at least one cell, but cellCount was %d", cellCount)
	}

	useMutex := options.Flags&ArenaCreateExternallySynchronized == 0

	base := options.BaseAddress
	if base == 0 {
		base = defaultBaseAddress
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	arena := &CellArena{
		logger: logger,
		flags:  options.Flags,
		base:   base,
		cells:  newCellTable(cellCount),
		blocks: swiss.NewMap[heap.Address, *blockSpan](uint32(cellCount)),
	}
	arena.mutex.UseMutex = useMutex

	if options.Flags&ArenaCreateMappedStore != 0 {
		store, err := mmap.MapAnon(cellCount * cellheap.CellStride)
		if err != nil {
			return nil, errors.Wrap(err, "failed to reserve the arena's backing store")
		}
		arena.store = store
		arena.mapped = true
	} else {
		arena.store = make([]byte, cellCount*cellheap.CellStride)
	}

	return arena, nil
}
