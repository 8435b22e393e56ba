package heap

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// CreateOptions contains optional settings when creating a BlockDeallocator
type CreateOptions struct {
	// Logger receives debug-level tracing of block teardown. When nil, slog.Default()
	// is used
	Logger *slog.Logger
}

// NewBlockDeallocator creates a BlockDeallocator that drives the provided single-cell
// release primitive.
//
// releaser - The CellReleaser that individual cells will be returned through. Must not
// be nil.
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewBlockDeallocator(releaser CellReleaser, options CreateOptions) (*BlockDeallocator, error) {
	if releaser == nil {
		return nil, errors.New("a BlockDeallocator requires a CellReleaser, but none was provided")
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BlockDeallocator{
		releaser: releaser,
		logger:   logger,
	}, nil
}
