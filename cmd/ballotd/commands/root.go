package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/nknorg/ballot/api/httpjson"
	"github.com/nknorg/ballot/api/websocket"
	"github.com/nknorg/ballot/ballot"
	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/config"
	"github.com/nknorg/ballot/dashboard"
	"github.com/nknorg/ballot/event"
	"github.com/nknorg/ballot/store"
	"github.com/nknorg/ballot/util/log"
	"github.com/spf13/cobra"
)

const (
	dumpMemInterval = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "ballotd",
	Version: config.Version,
	Short:   "ballotd - ballot ledger daemon",
	Long:    "",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ballotMain(); err != nil {
			log.Error(err)
			return err
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVar(&config.ConfigFile, "config", "", "config file name")
	rootCmd.Flags().StringVar(&config.LogPath, "log", "", "directory where your log file will be generated")
	rootCmd.Flags().StringVar(&config.ChainDBPath, "chaindb", "", "directory where your ballot data will be stored")
	rootCmd.Flags().StringVar(&config.Chairperson, "chairperson", "", "chairperson address, used when deploying a new ballot")
	rootCmd.Flags().StringVar(&config.Proposals, "proposals", "", "proposal names split by comma, used when deploying a new ballot")
	rootCmd.Flags().BoolVar(&config.InMemory, "inmemory", false, "keep ballot data in memory only")
	rootCmd.Flags().BoolVar(&config.Debug, "debug", false, "debug log level and runtime memory stats")
}

func ballotMain() error {
	err := config.Init()
	if err != nil {
		return err
	}

	err = log.Init()
	if err != nil {
		return err
	}

	if config.Debug {
		log.Log.SetDebugLevel(0)

		//dump runtime memory status
		t := time.NewTicker(dumpMemInterval)
		defer t.Stop()
		go func() {
			for range t.C {
				printMemStats()
			}
		}()
	}

	log.Infof("Node version: %v", config.Version)

	ledger, err := InitLedger()
	if err != nil {
		return err
	}
	defer ledger.Close()

	rpcServer := httpjson.NewServer(ledger)
	go func() {
		if err := rpcServer.Start(); err != nil {
			log.Errorf("JSON-RPC server stopped: %v", err)
		}
	}()

	ws := websocket.NewServer(ledger, event.Queue)
	if err := ws.Start(); err != nil {
		return err
	}
	defer ws.Stop()

	go func() {
		if err := dashboard.Start(ledger); err != nil {
			log.Errorf("Dashboard stopped: %v", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)
	<-signalChan
	fmt.Printf("\nReceived an interrupt, stopping services...\n")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rpcServer.Stop(ctx); err != nil {
		log.Errorf("Stop JSON-RPC server error: %v", err)
	}

	return nil
}

// InitLedger opens the ballot in the configured store, deploying it from the
// config if the store is empty.
func InitLedger() (*ballot.Ledger, error) {
	cs, err := store.NewLedgerStoreFromConfig(config.InMemory)
	if err != nil {
		return nil, err
	}

	ledger, err := ballot.Open(cs)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, ballot.ErrNotDeployed) {
		cs.Close()
		return nil, err
	}

	if len(config.Parameters.Chairperson) == 0 {
		cs.Close()
		return nil, errors.New("no ballot in store, chairperson is required to deploy one")
	}
	chairperson, err := common.ToScriptHash(config.Parameters.Chairperson)
	if err != nil {
		cs.Close()
		return nil, err
	}
	allocations, err := parseAllocations(config.Parameters.Allocations)
	if err != nil {
		cs.Close()
		return nil, err
	}

	ledger, err = ballot.Deploy(cs, chairperson, config.Parameters.Proposals, allocations)
	if err != nil {
		cs.Close()
		return nil, err
	}
	return ledger, nil
}

func parseAllocations(allocations map[string]string) (map[common.Uint160]common.Fixed64, error) {
	ret := make(map[common.Uint160]common.Fixed64, len(allocations))
	for addrStr, amountStr := range allocations {
		addr, err := common.ToScriptHash(addrStr)
		if err != nil {
			return nil, fmt.Errorf("parse allocation address %s error: %v", addrStr, err)
		}
		amount, err := common.StringToFixed64(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse allocation amount %s error: %v", amountStr, err)
		}
		ret[addr] = amount
	}
	return ret, nil
}

func printMemStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Infof("Alloc = %v TotalAlloc = %v Sys = %v NumGC = %v\n", m.Alloc/1024, m.TotalAlloc/1024, m.Sys/1024, m.NumGC)
	log.Infof("HeapAlloc = %v HeapSys = %v HeapIdle = %v HeapInuse = %v HeapReleased = %v HeapObjects = %v\n", m.HeapAlloc/1024, m.HeapSys/1024, m.HeapIdle/1024, m.HeapInuse/1024, m.HeapReleased/1024, m.HeapObjects/1024)
}
