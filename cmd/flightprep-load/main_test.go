package main

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aerodata/flightprep/internal/export"
)

func TestDispatchRunsAllFiles(t *testing.T) {
	var count atomic.Int32
	dispatch(context.Background(), []string{"a", "b", "c", "d"}, 2, func(string) {
		count.Add(1)
	})
	assert.Equal(t, int32(4), count.Load())
}

func TestDispatchStopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var count atomic.Int32
	dispatch(ctx, []string{"a", "b", "c"}, 2, func(string) {
		count.Add(1)
	})
	assert.Zero(t, count.Load())
}

func TestDispatchCancelMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var count atomic.Int32
	var once sync.Once
	dispatch(ctx, []string{"a", "b", "c", "d", "e"}, 1, func(string) {
		count.Add(1)
		once.Do(cancel)
	})

	// The first file cancels the context; with one worker, at most the
	// file already claimed from the semaphore can still run.
	assert.LessOrEqual(t, count.Load(), int32(2))
	assert.GreaterOrEqual(t, count.Load(), int32(1))
}

func TestDistinctMonths(t *testing.T) {
	rows := []export.Row{
		{FlDate: "2024-01-15"},
		{FlDate: "2024-01-20"},
		{FlDate: "2024-03-02"},
		{FlDate: "2023-12-31"},
	}
	assert.Equal(t, []string{"202312", "202401", "202403"}, distinctMonths(rows))
}
