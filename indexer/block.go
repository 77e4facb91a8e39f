package indexer

import (
	"github.com/btcsuite/btcd/wire"

	"github.com/btcrunes/runeindexer/internal/er"
	"github.com/btcrunes/runeindexer/rpc"
	"github.com/btcrunes/runeindexer/runes"
	"github.com/btcrunes/runeindexer/storage"
)

// Driver is C9: the per-block loop that instantiates a Processor with the
// block's context and feeds it every transaction in order.
type Driver struct {
	store storage.Store
	rpc   *rpc.Client
}

// NewDriver constructs a block driver over store and an RPC client used by
// the commitment verifier.
func NewDriver(store storage.Store, rpcClient *rpc.Client) *Driver {
	return &Driver{store: store, rpc: rpcClient}
}

// ProcessBlock runs the whole block: if height is below activation it's a
// no-op success. Otherwise it seeds the rune-number counter from storage,
// builds one Processor, and walks the block's transactions in order,
// stopping at the first Fatal error (spec §7: abort, don't advance height).
func (d *Driver) ProcessBlock(height uint64, block *wire.MsgBlock, rawRunestoneJSON func(txIndex int) string) er.R {
	if height < runes.FirstRuneHeight {
		return nil
	}

	maxNumber, errr := d.store.MaxRuneNumber()
	if errr != nil {
		return errr
	}
	startingNumber := uint64(0)
	if maxNumber != nil {
		startingNumber = *maxNumber + 1
	}

	proc := NewProcessor(d.store, d.rpc, startingNumber)
	blockTime := uint64(block.Header.Timestamp.Unix())
	log.Debugf("processing block %d (%d tx, rune numbers starting at %d)",
		height, len(block.Transactions), startingNumber)

	for i, tx := range block.Transactions {
		txHash := tx.TxHash()
		raw := ""
		if rawRunestoneJSON != nil {
			raw = rawRunestoneJSON(i)
		}
		if errr := proc.ProcessTransaction(height, blockTime, uint32(i), tx, txHash, raw); errr != nil {
			log.Errorf("block %d tx %d (%s): %v", height, i, txHash, errr)
			return errr
		}
	}
	return nil
}
