package rpc

import "github.com/btcsuite/btclog"

// log is silent until UseLogger is called (see indexer/log.go for the same
// per-package convention, grounded on the retrieved full node's
// pktwallet/wallet/log.go).
var log = btclog.Disabled

// UseLogger sets the logger this package writes connection and RPC-fault
// diagnostics to.
func UseLogger(logger btclog.Logger) {
	log = logger
}
