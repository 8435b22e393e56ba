package scope

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/ironvale/cellheap/heap"
	"golang.org/x/exp/slog"
)

// Memory is the slice of a memory system an Env needs in order to manage the blocks
// behind its bindings: an allocator for copies, the single-cell release primitive for
// teardown, and access to cell contents. arena.CellArena satisfies it.
type Memory interface {
	heap.CellReleaser

	// Allocate reserves a contiguous block of size cells and returns the Address of
	// its first cell
	Allocate(size int) (heap.Address, error)
	// CellData returns the backing bytes of the single cell identified by addr
	CellData(addr heap.Address) []byte
}

// CreateOptions contains optional settings when creating an Env or a Stack
type CreateOptions struct {
	// Flags indicates specific scope behaviors to activate or deactivate. Only Stack
	// reads flags- an Env on its own is never synchronized
	Flags CreateFlags

	// Logger receives debug-level tracing of definitions and teardown. When nil,
	// slog.Default() is used
	Logger *slog.Logger
}

// CreateFlags indicate specific scope behaviors to activate or deactivate
type CreateFlags int32

const (
	// StackCreateExternallySynchronized ensures that a Stack will not be synchronized
	// internally. The consumer must guarantee it is used from only one goroutine at a
	// time or is synchronized by some other mechanism.
	StackCreateExternallySynchronized CreateFlags = 1 << iota
)

// NewEnv creates an empty scope over the provided memory system.
//
// memory - The memory system that backs this scope's bindings. Must not be nil.
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewEnv(memory Memory, options CreateOptions) (*Env, error) {
	if memory == nil {
		return nil, errors.New("an Env requires a Memory, but none was provided")
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	deallocator, err := heap.NewBlockDeallocator(memory, heap.CreateOptions{Logger: logger})
	if err != nil {
		return nil, err
	}

	return &Env{
		memory:      memory,
		deallocator: deallocator,
		logger:      logger,
		bindings:    swiss.NewMap[string, Value](8),
	}, nil
}
