package heap

import "math"

// Address is an opaque handle that identifies a single memory cell within some
// cell-granular memory system. Consumers should not assume any relationship between
// an Address value and a real machine pointer- the only arithmetic an Address supports
// is offsetting by a whole number of cells.
type Address uint64

const (
	// NoCell is the Address value used to indicate the absence of a cell
	NoCell Address = math.MaxUint64
)

// Offset returns the Address of the cell that lies n cells past a. Negative values of n
// are permitted and step toward lower addresses.
func (a Address) Offset(n int) Address {
	return Address(int64(a) + int64(n))
}
