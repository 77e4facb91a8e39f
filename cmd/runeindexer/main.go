// Command runeindexer drives the Runes protocol indexer: it polls Bitcoin
// Core for new blocks and feeds them to the indexer package one at a time.
// The block fetcher, shutdown handling, and mempool tooling this wires
// around the core processor are deliberately minimal — per spec §1 they are
// external collaborators the core itself does not respecify.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/btcrunes/runeindexer/config"
	"github.com/btcrunes/runeindexer/indexer"
	"github.com/btcrunes/runeindexer/internal/version"
	"github.com/btcrunes/runeindexer/rpc"
	"github.com/btcrunes/runeindexer/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, errr := config.Load()
	if errr != nil {
		return errr.Native()
	}

	if err := initLogRotator(cfg.LogFilePath()); err != nil {
		return err
	}
	setLogLevels(cfg.LogLevel)
	version.WarnIfPrerelease(indexerLog)

	rpcClient, errr := rpc.Dial(rpc.Config{
		Host: cfg.RPCHost,
		User: cfg.RPCUser,
		Pass: cfg.RPCPass,
		TLS:  cfg.RPCTLS,
	})
	if errr != nil {
		return errr.Native()
	}
	defer rpcClient.Shutdown()

	store, errr := storage.OpenMySQL(cfg.DBDSN)
	if errr != nil {
		return errr.Native()
	}
	defer store.Close()

	driver := indexer.NewDriver(store, rpcClient)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)

	height := cfg.StartHeight
	for {
		select {
		case <-shutdown:
			indexerLog.Infof("shutdown requested at height %d", height)
			return nil
		default:
		}

		tip, errr := rpcClient.BlockCount()
		if errr != nil {
			indexerLog.Errorf("get block count: %v", errr)
			time.Sleep(5 * time.Second)
			continue
		}
		if int64(height) > tip {
			time.Sleep(2 * time.Second)
			continue
		}

		hash, errr := rpcClient.BlockHash(int64(height))
		if errr != nil {
			indexerLog.Errorf("get block hash at %d: %v", height, errr)
			return errr.Native()
		}
		if hash == nil {
			time.Sleep(2 * time.Second)
			continue
		}

		block, errr := rpcClient.Block(hash)
		if errr != nil {
			indexerLog.Errorf("get block %s: %v", hash, errr)
			return errr.Native()
		}
		if block == nil {
			time.Sleep(2 * time.Second)
			continue
		}

		if errr := driver.ProcessBlock(height, block, nil); errr != nil {
			indexerLog.Errorf("processing block %d aborted: %v", height, errr)
			return errr.Native()
		}

		height++
	}
}
