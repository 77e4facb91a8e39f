// Package indexer implements C4 through C9: the commitment verifier, the
// unallocated-balance resolver, the edict allocator, the etching handler,
// the per-transaction processor that orchestrates them, and the per-block
// driver that feeds it (spec §4.4-§4.9).
package indexer

import (
	"encoding/hex"
	"math/big"
	"sort"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/btcrunes/runeindexer/internal/er"
	"github.com/btcrunes/runeindexer/internal/runestone"
	"github.com/btcrunes/runeindexer/rpc"
	"github.com/btcrunes/runeindexer/runes"
	"github.com/btcrunes/runeindexer/storage"
)

// Processor is C8: a single-threaded, single-block-lifetime orchestrator.
// A Processor is constructed once per block by the block driver (C9) and
// fed transactions in ascending index order; it is not safe to share
// across goroutines (spec §5).
type Processor struct {
	store storage.Store
	rpc   *rpc.Client

	// nextNumber is the monotonic rune-number counter, seeded at block
	// start from storage.MaxRuneNumber()+1 (spec §4.7, §4.9).
	nextNumber uint64

	// batch and tx are valid only for the duration of ProcessTransaction;
	// helper methods on Processor (verifyCommitment, resolveUnallocated)
	// read them as scratch state for that one call.
	batch storage.Batch
	tx    *wire.MsgTx
}

// NewProcessor constructs a processor for one block. startingNumber is the
// first rune number this block is allowed to assign.
func NewProcessor(store storage.Store, rpcClient *rpc.Client, startingNumber uint64) *Processor {
	return &Processor{store: store, rpc: rpcClient, nextNumber: startingNumber}
}

// ProcessTransaction runs the full per-transaction pipeline (spec §4.8) and
// commits its effects atomically. rawRunestoneJSON is whatever JSON
// representation of the decoded artifact the caller wants persisted
// alongside each event row (spec §6, rune_event.rune_stone_json); it may be
// empty.
func (p *Processor) ProcessTransaction(height, blockTime uint64, txIndex uint32, tx *wire.MsgTx, txid chainhash.Hash, rawRunestoneJSON string) er.R {
	batch, errr := p.store.Begin()
	if errr != nil {
		return errr
	}
	p.batch = batch
	p.tx = tx
	defer func() {
		p.batch = nil
		p.tx = nil
	}()

	if errr := p.processTransactionLocked(height, blockTime, txIndex, tx, txid, rawRunestoneJSON, batch); errr != nil {
		if rbErr := batch.Rollback(); rbErr != nil {
			return rbErr
		}
		return errr
	}
	return batch.Commit()
}

func (p *Processor) processTransactionLocked(height, blockTime uint64, txIndex uint32, tx *wire.MsgTx, txid chainhash.Hash, rawRunestoneJSON string, batch storage.Batch) er.R {
	// 1. Decode artifact.
	art, errr := decodeArtifact(tx)
	if errr != nil {
		return errr
	}

	// 2. Seed unallocated from C5.
	unalloc, errr := p.resolveUnallocated(tx)
	if errr != nil {
		return errr
	}

	var events []runes.Event
	entries := map[runes.Id]*runes.Entry{} // entries loaded or built this tx, cached to avoid refetching
	dirty := map[runes.Id]bool{}           // subset of entries that actually changed and need persisting

	// 3. Mint.
	if mintId := mintTarget(art); mintId != nil {
		entry, errr := p.loadEntry(entries, *mintId)
		if errr != nil {
			return errr
		}
		if entry != nil {
			result := entry.Mintable(height)
			if result.Reason == runes.MintOK {
				// Mints is a count of successful mint calls compared against
				// Terms.Cap (spec §4.2 "Cap(cap) if mints >= cap"), not a
				// running total of minted amount.
				entry.Mints = new(big.Int).Add(entry.Mints, big.NewInt(1))
				dirty[*mintId] = true
				if errr := unalloc.add(*mintId, runes.NewLot(result.Amount)); errr != nil {
					return errr
				}
				events = append(events, runes.Event{
					Type: runes.EventMinted, BlockHeight: height, Timestamp: blockTime, Txid: txid,
					RuneId: *mintId, Amount: new(big.Int).Set(result.Amount),
				})
			}
		}
	}

	// 4. Etching.
	var etchedId *runes.Id
	etch, errr := p.tryEtch(art, height, txIndex)
	if errr != nil {
		return errr
	}
	if etch != nil {
		number := p.nextNumber
		p.nextNumber++
		entry := buildEntry(etch, height, txid, blockTime, number)
		entries[etch.Id] = entry
		etchedId = &etch.Id
		if entry.Premine != nil && entry.Premine.Sign() > 0 {
			if errr := unalloc.add(etch.Id, runes.NewLot(entry.Premine)); errr != nil {
				return errr
			}
		}
		events = append(events, runes.Event{
			Type: runes.EventEtched, BlockHeight: height, Timestamp: blockTime, Txid: txid, RuneId: etch.Id,
		})
	}

	// 5. Edict allocation (Runestone only; Cenotaph skips edicts entirely).
	alloc := allocated{}
	isCenotaph := art != nil && art.Cenotaph != nil
	var runestonePointer *uint32
	if art != nil && art.Runestone != nil {
		runestonePointer = art.Runestone.Pointer
		if errr := applyEdicts(alloc, unalloc, art.Runestone.Edicts, etchedId, tx.TxOut); errr != nil {
			return errr
		}
	}

	// 6. Reconciliation of leftovers.
	burned := pool{}
	if isCenotaph {
		for id, amt := range unalloc {
			if errr := burned.add(id, amt); errr != nil {
				return errr
			}
		}
	} else {
		defaultVout, ok := defaultOutput(runestonePointer, tx)
		if ok {
			for id, amt := range unalloc {
				if errr := alloc.add(defaultVout, id, amt); errr != nil {
					return errr
				}
			}
		} else {
			for id, amt := range unalloc {
				if errr := burned.add(id, amt); errr != nil {
					return errr
				}
			}
		}
	}

	// 7. Output materialization.
	var balances []runes.Balance
	vouts := make([]uint32, 0, len(alloc))
	for v := range alloc {
		vouts = append(vouts, v)
	}
	sort.Slice(vouts, func(i, j int) bool { return vouts[i] < vouts[j] })

	for _, vout := range vouts {
		out := tx.TxOut[vout]
		ids := make([]runes.Id, 0, len(alloc[vout]))
		for id := range alloc[vout] {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

		if isOpReturn(out.PkScript) {
			for _, id := range ids {
				if errr := burned.add(id, alloc[vout][id]); errr != nil {
					return errr
				}
			}
			continue
		}

		address, scriptHex := describeOutput(out.PkScript)
		for _, id := range ids {
			amt := alloc[vout][id]
			balances = append(balances, runes.Balance{
				Outpoint:  wire.OutPoint{Hash: txid, Index: vout},
				RuneId:    id,
				Amount:    new(big.Int).Set(amt.Big()),
				Address:   address,
				ScriptHex: scriptHex,
				Block:     height,
			})
			events = append(events, runes.Event{
				Type: runes.EventTransferred, BlockHeight: height, Timestamp: blockTime, Txid: txid,
				RuneId: id, Amount: new(big.Int).Set(amt.Big()),
				Outpoint: wire.OutPoint{Hash: txid, Index: vout},
			})
		}
	}

	// 8. Burn bookkeeping.
	burnIds := make([]runes.Id, 0, len(burned))
	for id := range burned {
		burnIds = append(burnIds, id)
	}
	sort.Slice(burnIds, func(i, j int) bool { return burnIds[i].Less(burnIds[j]) })
	for _, id := range burnIds {
		entry, errr := p.loadEntry(entries, id)
		if errr != nil {
			return errr
		}
		if entry == nil {
			return errFatal.New("burn references unknown rune entry: "+id.String(), nil)
		}
		amt := burned[id]
		entry.Burned = new(big.Int).Add(entry.Burned, amt.Big())
		dirty[id] = true
		events = append(events, runes.Event{
			Type: runes.EventBurned, BlockHeight: height, Timestamp: blockTime, Txid: txid,
			RuneId: id, Amount: new(big.Int).Set(amt.Big()),
		})
	}

	// 9. Commit staged mutations.
	if etch != nil {
		if errr := batch.StoreEntry(etch.Id, entries[etch.Id]); errr != nil {
			return errr
		}
	}
	for id := range dirty {
		if etch != nil && id == etch.Id {
			continue // already stored above via StoreEntry
		}
		entry := entries[id]
		if errr := batch.UpdateMints(id, entry.Mints); errr != nil {
			return errr
		}
		if errr := batch.UpdateBurned(id, entry.Burned); errr != nil {
			return errr
		}
	}
	if len(balances) > 0 {
		if errr := batch.StoreBalances(balances); errr != nil {
			return errr
		}
	}
	if len(events) > 0 {
		if errr := batch.StoreEvents(events, rawRunestoneJSON); errr != nil {
			return errr
		}
	}
	return nil
}

// loadEntry returns the cached entry for id if this transaction has already
// touched it, otherwise loads it from storage and caches the result (even
// when nil, so a repeat lookup doesn't re-query).
func (p *Processor) loadEntry(cache map[runes.Id]*runes.Entry, id runes.Id) (*runes.Entry, er.R) {
	if e, ok := cache[id]; ok {
		return e, nil
	}
	e, errr := p.store.LoadEntry(id)
	if errr != nil {
		return nil, errr
	}
	cache[id] = e
	return e, nil
}

func mintTarget(art *runestone.Artifact) *runes.Id {
	if art == nil {
		return nil
	}
	if art.Runestone != nil {
		return art.Runestone.Mint
	}
	if art.Cenotaph != nil {
		return art.Cenotaph.Mint
	}
	return nil
}

// defaultOutput computes the bucket leftover balances route to when no
// edict claims them (spec §4.6 step 6, §9 open question (b)): the
// runestone's pointer field if present, else the first non-OP_RETURN
// output, else none.
func defaultOutput(pointer *uint32, tx *wire.MsgTx) (uint32, bool) {
	if pointer != nil {
		return *pointer, true
	}
	for i, out := range tx.TxOut {
		if !isOpReturn(out.PkScript) {
			return uint32(i), true
		}
	}
	return 0, false
}

func isOpReturn(script []byte) bool {
	return len(script) > 0 && script[0] == txscript.OP_RETURN
}

// describeOutput renders the address (best-effort; empty for scripts with
// no standard encoding) and hex script for a balance record (spec §6).
func describeOutput(script []byte) (address, scriptHex string) {
	scriptHex = hex.EncodeToString(script)
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(script, &chaincfg.MainNetParams)
	if err == nil && len(addrs) == 1 {
		address = addrs[0].EncodeAddress()
	}
	return address, scriptHex
}

// decodeArtifact scans tx's outputs for the first one that looks like a
// runestone payload and decodes it (spec §6: Runestone decoding is treated
// as an available library; this just locates the right output for it).
func decodeArtifact(tx *wire.MsgTx) (*runestone.Artifact, er.R) {
	for _, out := range tx.TxOut {
		if !runestone.IsPossibleRunestone(out.PkScript) {
			continue
		}
		art, err := runestone.Decode(out.PkScript)
		if err != nil {
			return nil, er.E(err)
		}
		return art, nil
	}
	return nil, nil
}
