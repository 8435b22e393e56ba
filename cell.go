package cellheap

// CellStride is the number of backing-store bytes that make up a single cell. A cell is
// the smallest unit a single-cell release primitive can return to its memory system.
const CellStride = 8
