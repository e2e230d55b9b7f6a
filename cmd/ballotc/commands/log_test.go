package commands

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchOperationsInOrder(t *testing.T) {
	numWorkers = 4

	var mu sync.Mutex
	var printed []uint32
	err := fetchOperations(20, func(ctx context.Context, workerID, jobID uint32) (interface{}, bool) {
		return jobID * 10, true
	}, func(ctx context.Context, jobID uint32, result interface{}) bool {
		mu.Lock()
		defer mu.Unlock()
		printed = append(printed, result.(uint32))
		return true
	})
	require.Nil(t, err)

	require.Len(t, printed, 20)
	for i, v := range printed {
		require.Equal(t, uint32(i*10), v)
	}
}
