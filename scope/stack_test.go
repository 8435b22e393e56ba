package scope_test

import (
	"testing"

	"github.com/ironvale/cellheap/scope"
	"github.com/stretchr/testify/require"
)

func TestStackResolvesInnermostFirst(t *testing.T) {
	cellArena := testArena(t, 64)
	stack, err := scope.NewStack(cellArena, scope.CreateOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, stack.Depth())

	outer := allocBlock(t, cellArena, 2)
	stack.Current().DefineNoCopy("x", scope.NewValue(outer))

	inner, err := stack.Push()
	require.NoError(t, err)
	require.Equal(t, 2, stack.Depth())

	shadow := allocBlock(t, cellArena, 3)
	inner.DefineNoCopy("x", scope.NewValue(shadow))

	got, err := stack.Get("x")
	require.NoError(t, err)
	require.Equal(t, shadow.Base, got.Block().Base)

	require.NoError(t, stack.Pop())

	got, err = stack.Get("x")
	require.NoError(t, err)
	require.Equal(t, outer.Base, got.Block().Base)
}

func TestStackPopFreesScope(t *testing.T) {
	cellArena := testArena(t, 32)
	stack, err := scope.NewStack(cellArena, scope.CreateOptions{})
	require.NoError(t, err)

	inner, err := stack.Push()
	require.NoError(t, err)

	block := allocBlock(t, cellArena, 4)
	inner.DefineNoCopy("local", scope.NewValue(block))
	require.Equal(t, 28, cellArena.FreeCellCount())

	require.NoError(t, stack.Pop())
	require.Equal(t, 32, cellArena.FreeCellCount())
	require.True(t, cellArena.IsEmpty())

	_, err = stack.Get("local")
	require.ErrorIs(t, err, scope.NotDefinedError)
}

func TestStackPopEmpty(t *testing.T) {
	cellArena := testArena(t, 8)
	stack, err := scope.NewStack(cellArena, scope.CreateOptions{})
	require.NoError(t, err)

	require.NoError(t, stack.Pop())
	require.Equal(t, 0, stack.Depth())
	require.Nil(t, stack.Current())
	require.Error(t, stack.Pop())

	require.Error(t, stack.Define("x", scope.Value{}))

	_, err = stack.Get("x")
	require.ErrorIs(t, err, scope.NotDefinedError)
}

func TestStackDefine(t *testing.T) {
	cellArena := testArena(t, 16)
	stack, err := scope.NewStack(cellArena, scope.CreateOptions{})
	require.NoError(t, err)

	source := allocBlock(t, cellArena, 2)
	require.NoError(t, stack.Define("x", scope.NewValue(source)))

	got, err := stack.Get("x")
	require.NoError(t, err)
	require.NotEqual(t, source.Base, got.Block().Base)
	require.Equal(t, 2, got.Block().Size)
}
