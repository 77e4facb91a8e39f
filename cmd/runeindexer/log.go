package main

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/btcrunes/runeindexer/indexer"
	"github.com/btcrunes/runeindexer/rpc"
	"github.com/btcrunes/runeindexer/storage"
)

// logWriter implements io.Writer and fans out to both stdout and the
// rotating log file, the same split the retrieved full node's root log.go
// uses.
type logWriter struct {
	rotator *rotator.Rotator
}

func (w logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	return w.rotator.Write(p)
}

var (
	backendLog *btclog.Backend
	logRotator *rotator.Rotator

	indexerLog = btclog.Disabled
	rpcLog     = btclog.Disabled
	storageLog = btclog.Disabled
)

// initLogRotator opens logFile for rotating, append-only writing, creating
// parent directories as needed, and wires it plus stdout into every
// package's logger.
func initLogRotator(logFile string) error {
	if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
		return err
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return err
	}
	logRotator = r

	backendLog = btclog.NewBackend(logWriter{rotator: r})

	indexerLog = backendLog.Logger("INDX")
	rpcLog = backendLog.Logger("RPCC")
	storageLog = backendLog.Logger("STOR")

	indexer.UseLogger(indexerLog)
	rpc.UseLogger(rpcLog)
	storage.UseLogger(storageLog)
	return nil
}

// setLogLevels applies levelStr (trace, debug, info, warn, error, critical)
// to every subsystem logger.
func setLogLevels(levelStr string) {
	level, ok := btclog.LevelFromString(levelStr)
	if !ok {
		level = btclog.LevelInfo
	}
	indexerLog.SetLevel(level)
	rpcLog.SetLevel(level)
	storageLog.SetLevel(level)
}
