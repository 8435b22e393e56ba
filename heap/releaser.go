package heap

//go:generate mockgen -source releaser.go -destination ./mocks/releaser.go

// CellReleaser is the single-cell free primitive that a BlockDeallocator drives. It is
// a capability injected from the surrounding memory system: implementations are expected
// always to succeed, and releasing the same cell twice is undefined. The arena package
// provides a production implementation; tests can use a mock that records call order
// and addresses.
type CellReleaser interface {
	// ReleaseCell returns the single cell identified by addr to the underlying memory
	// system. The cell must be live and must not be released again until it has been
	// handed out by a subsequent allocation.
	ReleaseCell(addr Address)
}
