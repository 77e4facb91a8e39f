package indexer

import "github.com/btcsuite/btclog"

// log is the package-level logger; it does nothing until UseLogger is
// called, matching the retrieved full node's per-package logging
// convention (see pktwallet/wallet/log.go).
var log = btclog.Disabled

// UseLogger sets the logger the indexer package writes block/tx progress
// and fatal-abort diagnostics to.
func UseLogger(logger btclog.Logger) {
	log = logger
}
