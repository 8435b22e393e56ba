package arena_test

import (
	"math"
	"testing"

	"github.com/ironvale/cellheap"
	"github.com/ironvale/cellheap/arena"
	"github.com/ironvale/cellheap/heap"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestArenaAllocateThenDeallocate(t *testing.T) {
	cellArena, err := arena.New(256, arena.CreateOptions{})
	require.NoError(t, err)

	base, err := cellArena.Allocate(128)
	require.NoError(t, err)
	require.NotEqual(t, heap.NoCell, base)
	require.Equal(t, 256, cellArena.CellCount())
	require.Equal(t, 128, cellArena.FreeCellCount())
	require.Equal(t, 1, cellArena.BlockCount())

	deallocator, err := heap.NewBlockDeallocator(cellArena, heap.CreateOptions{})
	require.NoError(t, err)

	require.Equal(t, 0, deallocator.Deallocate(base, 128))
	require.True(t, cellArena.IsEmpty())
	require.Equal(t, 256, cellArena.FreeCellCount())
	require.NoError(t, cellArena.Validate())
}

func TestArenaFirstFitReuse(t *testing.T) {
	cellArena, err := arena.New(16, arena.CreateOptions{})
	require.NoError(t, err)

	first, err := cellArena.Allocate(4)
	require.NoError(t, err)
	second, err := cellArena.Allocate(4)
	require.NoError(t, err)
	require.Equal(t, first.Offset(4), second)

	deallocator, err := heap.NewBlockDeallocator(cellArena, heap.CreateOptions{})
	require.NoError(t, err)
	deallocator.Deallocate(first, 4)

	// The freed span at the bottom of the arena should win over the larger run above
	third, err := cellArena.Allocate(3)
	require.NoError(t, err)
	require.Equal(t, first, third)
	require.NoError(t, cellArena.Validate())
}

func TestArenaPartialRelease(t *testing.T) {
	cellArena, err := arena.New(8, arena.CreateOptions{})
	require.NoError(t, err)

	base, err := cellArena.Allocate(4)
	require.NoError(t, err)

	cellArena.ReleaseCell(base.Offset(3))
	require.Equal(t, 1, cellArena.BlockCount())
	require.Equal(t, 5, cellArena.FreeCellCount())
	require.NoError(t, cellArena.Validate())

	cellArena.ReleaseCell(base.Offset(2))
	cellArena.ReleaseCell(base.Offset(1))
	cellArena.ReleaseCell(base)
	require.True(t, cellArena.IsEmpty())
	require.NoError(t, cellArena.Validate())
}

func TestArenaReleaseFreeCellIsNoOp(t *testing.T) {
	cellArena, err := arena.New(8, arena.CreateOptions{})
	require.NoError(t, err)

	base, err := cellArena.Allocate(2)
	require.NoError(t, err)

	cellArena.ReleaseCell(base)
	cellArena.ReleaseCell(base)
	require.Equal(t, 7, cellArena.FreeCellCount())
	require.NoError(t, cellArena.Validate())
}

func TestArenaOutOfCells(t *testing.T) {
	cellArena, err := arena.New(8, arena.CreateOptions{})
	require.NoError(t, err)

	_, err = cellArena.Allocate(5)
	require.NoError(t, err)

	_, err = cellArena.Allocate(4)
	require.ErrorIs(t, err, arena.OutOfCellsError)
}

func TestArenaZeroSizeAllocate(t *testing.T) {
	cellArena, err := arena.New(8, arena.CreateOptions{})
	require.NoError(t, err)

	base, err := cellArena.Allocate(0)
	require.NoError(t, err)
	require.Equal(t, heap.NoCell, base)
	require.Equal(t, 8, cellArena.FreeCellCount())

	_, err = cellArena.Allocate(-1)
	require.ErrorIs(t, err, cellheap.NegativeSizeError)
}

func TestArenaStatistics(t *testing.T) {
	cellArena, err := arena.New(100, arena.CreateOptions{})
	require.NoError(t, err)

	_, err = cellArena.Allocate(10)
	require.NoError(t, err)
	_, err = cellArena.Allocate(5)
	require.NoError(t, err)

	var stats cellheap.DetailedStatistics
	stats.Clear()
	cellArena.AddDetailedStatistics(&stats)

	require.Equal(t, cellheap.DetailedStatistics{
		Statistics: cellheap.Statistics{
			ArenaCount: 1,
			ArenaCells: 100,
			BlockCount: 2,
			BlockCells: 15,
		},
		FreeRangeCount:   1,
		BlockSizeMin:     5,
		BlockSizeMax:     10,
		FreeRangeSizeMin: 85,
		FreeRangeSizeMax: 85,
	}, stats)

	var plain cellheap.Statistics
	plain.Clear()
	cellArena.AddStatistics(&plain)

	require.Equal(t, cellheap.Statistics{
		ArenaCount: 1,
		ArenaCells: 100,
		BlockCount: 2,
		BlockCells: 15,
	}, plain)
}

func TestArenaEmptyStatistics(t *testing.T) {
	cellArena, err := arena.New(50, arena.CreateOptions{})
	require.NoError(t, err)

	var stats cellheap.DetailedStatistics
	stats.Clear()
	cellArena.AddDetailedStatistics(&stats)

	require.Equal(t, cellheap.DetailedStatistics{
		Statistics: cellheap.Statistics{
			ArenaCount: 1,
			ArenaCells: 50,
		},
		FreeRangeCount:   1,
		BlockSizeMin:     math.MaxInt,
		BlockSizeMax:     0,
		FreeRangeSizeMin: 50,
		FreeRangeSizeMax: 50,
	}, stats)
}

func TestStatisticsAggregateAcrossArenas(t *testing.T) {
	first, err := arena.New(10, arena.CreateOptions{})
	require.NoError(t, err)
	_, err = first.Allocate(4)
	require.NoError(t, err)

	second, err := arena.New(20, arena.CreateOptions{})
	require.NoError(t, err)
	_, err = second.Allocate(5)
	require.NoError(t, err)
	_, err = second.Allocate(5)
	require.NoError(t, err)

	var firstStats, total cellheap.DetailedStatistics
	firstStats.Clear()
	total.Clear()

	first.AddDetailedStatistics(&firstStats)
	second.AddDetailedStatistics(&total)
	total.AddDetailedStatistics(&firstStats)

	require.Equal(t, cellheap.DetailedStatistics{
		Statistics: cellheap.Statistics{
			ArenaCount: 2,
			ArenaCells: 30,
			BlockCount: 3,
			BlockCells: 14,
		},
		FreeRangeCount:   2,
		BlockSizeMin:     4,
		BlockSizeMax:     5,
		FreeRangeSizeMin: 6,
		FreeRangeSizeMax: 10,
	}, total)
}

func TestStatisticsFragmentedBlock(t *testing.T) {
	cellArena, err := arena.New(8, arena.CreateOptions{})
	require.NoError(t, err)

	base, err := cellArena.Allocate(4)
	require.NoError(t, err)

	// An interior hole splits the block into two surviving runs
	cellArena.ReleaseCell(base.Offset(1))

	var detailed cellheap.DetailedStatistics
	detailed.Clear()
	cellArena.AddDetailedStatistics(&detailed)

	require.Equal(t, 2, detailed.BlockCount)
	require.Equal(t, 3, detailed.BlockCells)
	require.Equal(t, 2, detailed.FreeRangeCount)
	require.Equal(t, 1, detailed.BlockSizeMin)
	require.Equal(t, 2, detailed.BlockSizeMax)

	var plain cellheap.Statistics
	plain.Clear()
	cellArena.AddStatistics(&plain)

	require.Equal(t, 1, plain.BlockCount)
	require.Equal(t, 3, plain.BlockCells)
	require.NoError(t, cellArena.Validate())
}

func TestArenaJsonData(t *testing.T) {
	cellArena, err := arena.New(8, arena.CreateOptions{})
	require.NoError(t, err)

	_, err = cellArena.Allocate(3)
	require.NoError(t, err)

	writer := jwriter.NewWriter()
	obj := writer.Object()
	cellArena.ArenaJsonData(obj)
	obj.End()

	require.NoError(t, writer.Error())
	require.JSONEq(t,
		`{
			"TotalCells": 8,
			"FreeCells": 5,
			"Blocks": 1,
			"Regions": [
				{"Base": 4096, "Cells": 3, "Free": false},
				{"Base": 4099, "Cells": 5, "Free": true}
			]
		}`,
		string(writer.Bytes()))
}

func TestArenaDebugLogAllBlocks(t *testing.T) {
	cellArena, err := arena.New(16, arena.CreateOptions{})
	require.NoError(t, err)

	_, err = cellArena.Allocate(2)
	require.NoError(t, err)
	_, err = cellArena.Allocate(3)
	require.NoError(t, err)

	var lines int
	cellArena.DebugLogAllBlocks(slog.Default(), func(log *slog.Logger, base heap.Address, size int, live int) {
		lines++
		log.Debug("live block",
			slog.Uint64("base", uint64(base)),
			slog.Int("cells", size),
			slog.Int("live", live))
	})

	require.Equal(t, 2, lines)
}

func TestArenaCellData(t *testing.T) {
	cellArena, err := arena.New(4, arena.CreateOptions{})
	require.NoError(t, err)

	base, err := cellArena.Allocate(2)
	require.NoError(t, err)

	data := cellArena.CellData(base.Offset(1))
	require.Len(t, data, cellheap.CellStride)

	data[0] = 0xAB
	require.Equal(t, byte(0xAB), cellArena.CellData(base.Offset(1))[0])
	require.Equal(t, byte(0), cellArena.CellData(base)[0])
}

func TestArenaBaseAddress(t *testing.T) {
	cellArena, err := arena.New(4, arena.CreateOptions{BaseAddress: 0x4000})
	require.NoError(t, err)

	base, err := cellArena.Allocate(1)
	require.NoError(t, err)
	require.Equal(t, heap.Address(0x4000), base)
}

func TestArenaRequiresCells(t *testing.T) {
	_, err := arena.New(0, arena.CreateOptions{})
	require.Error(t, err)
}

func TestArenaMappedStore(t *testing.T) {
	cellArena, err := arena.New(32, arena.CreateOptions{Flags: arena.ArenaCreateMappedStore})
	if err != nil {
		t.Skipf("anonymous mappings unavailable on this platform: %v", err)
	}

	base, err := cellArena.Allocate(8)
	require.NoError(t, err)

	cellArena.CellData(base)[0] = 0x42
	require.Equal(t, byte(0x42), cellArena.CellData(base)[0])

	deallocator, err := heap.NewBlockDeallocator(cellArena, heap.CreateOptions{})
	require.NoError(t, err)
	deallocator.Deallocate(base, 8)

	require.NoError(t, cellArena.Destroy())
}

func TestArenaCheckCorruption(t *testing.T) {
	cellArena, err := arena.New(8, arena.CreateOptions{})
	require.NoError(t, err)

	base, err := cellArena.Allocate(4)
	require.NoError(t, err)

	deallocator, err := heap.NewBlockDeallocator(cellArena, heap.CreateOptions{})
	require.NoError(t, err)
	deallocator.Deallocate(base, 4)

	require.NoError(t, cellArena.CheckCorruption())

	if cellheap.PoisonEnabled {
		// A stale write through a dangling cell reference must surface as corruption
		cellArena.CellData(base)[0] = 0x01
		require.Error(t, cellArena.CheckCorruption())
	}
}

func TestArenaVisitAllRegions(t *testing.T) {
	cellArena, err := arena.New(10, arena.CreateOptions{})
	require.NoError(t, err)

	first, err := cellArena.Allocate(2)
	require.NoError(t, err)
	_, err = cellArena.Allocate(3)
	require.NoError(t, err)

	deallocator, err := heap.NewBlockDeallocator(cellArena, heap.CreateOptions{})
	require.NoError(t, err)
	deallocator.Deallocate(first, 2)

	type region struct {
		base heap.Address
		size int
		free bool
	}
	var regions []region

	err = cellArena.VisitAllRegions(func(base heap.Address, size int, free bool) error {
		regions = append(regions, region{base, size, free})
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, []region{
		{4096, 2, true},
		{4098, 3, false},
		{4101, 5, true},
	}, regions)
}
