package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nknorg/ballot/api/httpjson/client"
	"github.com/nknorg/consequential"
	"github.com/spf13/cobra"
)

const (
	maxFetchWorkerFails      = 3
	fetchWorkerStartInterval = 10 * time.Millisecond
)

var (
	fromHeight uint32
	toHeight   uint32
	numWorkers uint32
)

// logCmd prints committed operation receipts in height order
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "print the receipts of committed operations in height order",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return logAction()
	},
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().Uint32Var(&fromHeight, "from", 1, "first height to print")
	logCmd.Flags().Uint32Var(&toHeight, "to", 0, "last height to print, 0 for the current height")
	logCmd.Flags().Uint32Var(&numWorkers, "workers", 4, "number of concurrent requests")
}

func logAction() error {
	var height uint32
	if err := client.CallResult(Address(), "getheight", map[string]interface{}{}, &height); err != nil {
		return err
	}
	if toHeight == 0 || toHeight > height {
		toHeight = height
	}
	if fromHeight == 0 {
		fromHeight = 1
	}
	if fromHeight > toHeight {
		return nil
	}
	if numWorkers == 0 {
		numWorkers = 1
	}

	numJobs := toHeight - fromHeight + 1
	return fetchOperations(numJobs, func(ctx context.Context, workerID, jobID uint32) (interface{}, bool) {
		var receipt json.RawMessage
		err := client.CallResult(Address(), "getoperation", map[string]interface{}{"height": fromHeight + jobID}, &receipt)
		if err != nil {
			fmt.Printf("Get operation at height %d error: %v\n", fromHeight+jobID, err)
			return nil, false
		}
		return []byte(receipt), true
	}, func(ctx context.Context, jobID uint32, result interface{}) bool {
		receipt, ok := result.([]byte)
		if !ok {
			return false
		}
		return FormatOutput(receipt) == nil
	})
}

// fetchOperations runs fetch for jobs [0, numJobs) concurrently and calls
// finish for each result in job order.
func fetchOperations(numJobs uint32, fetch func(context.Context, uint32, uint32) (interface{}, bool), finish func(context.Context, uint32, interface{}) bool) error {
	workers := numWorkers
	if workers > numJobs {
		workers = numJobs
	}

	cs, err := consequential.NewConSequential(&consequential.Config{
		StartJobID:          0,
		EndJobID:            numJobs - 1,
		JobBufSize:          numJobs,
		WorkerPoolSize:      workers,
		MaxWorkerFails:      maxFetchWorkerFails,
		WorkerStartInterval: fetchWorkerStartInterval,
		RunJob:              fetch,
		FinishJob:           finish,
	})
	if err != nil {
		return err
	}

	return cs.Start(context.Background())
}
