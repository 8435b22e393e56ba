package arena

const freeCell int32 = -1

// cellTable tracks per-cell state for an arena. Each entry holds the starting offset of
// the block the cell was handed out with, or freeCell when the cell is unallocated.
type cellTable struct {
	spans     []int32
	freeCount int
}

func newCellTable(count int) *cellTable {
	t := &cellTable{
		spans:     make([]int32, count),
		freeCount: count,
	}
	for i := range t.spans {
		t.spans[i] = freeCell
	}
	return t
}

func (t *cellTable) len() int {
	return len(t.spans)
}

func (t *cellTable) owner(offset int) int32 {
	if offset < 0 || offset >= len(t.spans) {
		return freeCell
	}
	return t.spans[offset]
}

func (t *cellTable) reserve(start, count int) {
	for i := start; i < start+count; i++ {
		t.spans[i] = int32(start)
	}
	t.freeCount -= count
}

func (t *cellTable) release(offset int) {
	t.spans[offset] = freeCell
	t.freeCount++
}

// findRun locates the first run of count contiguous free cells
func (t *cellTable) findRun(count int) (int, bool) {
	run := 0
	for i, owner := range t.spans {
		if owner != freeCell {
			run = 0
			continue
		}

		run++
		if run == count {
			return i - count + 1, true
		}
	}
	return 0, false
}
