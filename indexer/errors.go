package indexer

import "github.com/btcrunes/runeindexer/internal/er"

// ErrType classifies the indexer's own faults, as distinct from errors
// passed through from storage or rpc. Every Fatal code aborts the block
// currently being processed (spec §7).
var ErrType = er.NewErrorType("indexer.Err")

var errFatal = ErrType.Code("errFatal")
