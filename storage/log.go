package storage

import "github.com/btcsuite/btclog"

// log is silent until UseLogger is called (see indexer/log.go for the same
// per-package convention).
var log = btclog.Disabled

// UseLogger sets the logger this package writes connection and query-fault
// diagnostics to.
func UseLogger(logger btclog.Logger) {
	log = logger
}
