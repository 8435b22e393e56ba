package heap_test

import (
	"testing"

	"github.com/ironvale/cellheap/heap"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
)

func TestBlockJsonData(t *testing.T) {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	heap.Block{Base: 4096, Size: 3}.BlockJsonData(obj)
	obj.End()

	require.NoError(t, writer.Error())
	require.JSONEq(t, `{"BaseAddress": 4096, "Cells": 3}`, string(writer.Bytes()))
}

func TestBlockJsonDataNoCell(t *testing.T) {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	heap.Block{Base: heap.NoCell, Size: 0}.BlockJsonData(obj)
	obj.End()

	require.NoError(t, writer.Error())
	require.JSONEq(t, `{"BaseAddress": null, "Cells": 0}`, string(writer.Bytes()))
}
