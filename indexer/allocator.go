package indexer

import (
	"github.com/btcsuite/btcd/wire"

	"github.com/btcrunes/runeindexer/internal/er"
	"github.com/btcrunes/runeindexer/internal/runestone"
	"github.com/btcrunes/runeindexer/runes"
)

// allocated is the per-output distribution a transaction's edicts (and
// later the reconciliation step) build up: allocated[vout][runeId] = amount.
type allocated map[uint32]pool

func (a allocated) add(vout uint32, id runes.Id, amount runes.Lot) er.R {
	p, ok := a[vout]
	if !ok {
		p = pool{}
		a[vout] = p
	}
	return p.add(id, amount)
}

// applyEdicts implements C6: it drains unallocated according to edicts, in
// declared order, writing the result into dst. etchedId is the RuneId this
// transaction just etched, if any — edicts addressed to the Id{} sentinel
// resolve to it; if nothing was etched, such edicts are skipped entirely
// (spec §4.6).
func applyEdicts(dst allocated, unallocated pool, edicts []runestone.Edict, etchedId *runes.Id, outputs []*wire.TxOut) er.R {
	numOutputs := uint32(len(outputs))

	for _, e := range edicts {
		id := e.Id
		if id.IsZero() {
			if etchedId == nil {
				continue
			}
			id = *etchedId
		}

		available, ok := unallocated[id]
		if !ok || available.IsZero() {
			continue
		}

		amount := runes.NewLot(e.Amount)

		if e.Output == numOutputs {
			// Distribute-to-all sentinel (spec §4.6).
			dests := nonOpReturnOutputs(outputs)
			if len(dests) == 0 {
				continue
			}

			if amount.IsZero() {
				share, remainder := available.DivMod(len(dests))
				for i, vout := range dests {
					give := share
					if i < remainder {
						var errr er.R
						give, errr = share.Add(runes.NewLotU64(1))
						if errr != nil {
							return errr
						}
					}
					if give.IsZero() {
						continue
					}
					if errr := dst.add(vout, id, give); errr != nil {
						return errr
					}
					if _, errr := unallocated.take(id, give); errr != nil {
						return errr
					}
				}
			} else {
				// Per destination, in order, allocate min(amount, whatever
				// is still left in the pool); the pool may run dry before
				// every destination is visited (spec §4.6).
				for _, vout := range dests {
					give, errr := unallocated.take(id, amount)
					if errr != nil {
						return errr
					}
					if give.IsZero() {
						break
					}
					if errr := dst.add(vout, id, give); errr != nil {
						return errr
					}
				}
			}
			continue
		}

		if e.Output >= numOutputs {
			continue
		}

		want := amount
		if want.IsZero() {
			want = available
		}
		give, errr := unallocated.take(id, want)
		if errr != nil {
			return errr
		}
		if give.IsZero() {
			continue
		}
		if errr := dst.add(e.Output, id, give); errr != nil {
			return errr
		}
	}

	return nil
}

func nonOpReturnOutputs(outputs []*wire.TxOut) []uint32 {
	var out []uint32
	for i, o := range outputs {
		if !isOpReturn(o.PkScript) {
			out = append(out, uint32(i))
		}
	}
	return out
}
