//go:build debug_cell_heap

package cellheap

const (
	// PoisonEnabled reports whether released cells are stamped with a recognizable pattern.
	// It is true only when the debug_cell_heap build tag is present.
	PoisonEnabled = true
	// cellPoisonPattern is a one-byte pattern written into every cell as it is released
	cellPoisonPattern byte = 0xD9
)

// PoisonCells stamps an easy-to-identify marker across count cells of the provided backing
// store, beginning at offset. This method no-ops unless the debug_cell_heap build tag is present.
func PoisonCells(store []byte, offset, count int) {
	for i := 0; i < count; i++ {
		store[offset+i] = cellPoisonPattern
	}
}

// VerifyPoison checks that the marker written by PoisonCells is still present across count
// cells of the provided backing store, beginning at offset. It returns true if the marker is
// intact and false otherwise. This method always returns true unless the debug_cell_heap
// build tag is present.
func VerifyPoison(store []byte, offset, count int) bool {
	for i := 0; i < count; i++ {
		if store[offset+i] != cellPoisonPattern {
			return false
		}
	}

	return true
}

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_cell_heap build tag is present
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckNonNegative will verify that the numerical value passed in is zero or greater, and panics
// if it is not. This method no-ops unless the debug_cell_heap build tag is present.
func DebugCheckNonNegative[T ~int](value T, name string) {
	err := CheckNonNegative[T](value, name)
	if err != nil {
		panic(err)
	}
}
