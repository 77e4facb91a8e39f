package indexer

import (
	"github.com/btcsuite/btcd/wire"

	"github.com/btcrunes/runeindexer/internal/er"
	"github.com/btcrunes/runeindexer/runes"
)

// pool is the in-flight unallocated-balance map a single transaction's
// processing accumulates and drains (spec §3 Lot, §4.5/§4.6/§4.8). Keys
// never map to a nil Lot; a rune with nothing left is deleted, not zeroed,
// so range over a pool only ever sees live balances.
type pool map[runes.Id]runes.Lot

func (p pool) add(id runes.Id, amount runes.Lot) er.R {
	cur, ok := p[id]
	if !ok {
		cur = runes.ZeroLot()
	}
	sum, errr := cur.Add(amount)
	if errr != nil {
		return errr
	}
	p[id] = sum
	return nil
}

func (p pool) take(id runes.Id, amount runes.Lot) (runes.Lot, er.R) {
	cur, ok := p[id]
	if !ok {
		return runes.ZeroLot(), nil
	}
	taken := cur.Min(amount)
	rest, errr := cur.Sub(taken)
	if errr != nil {
		return runes.Lot{}, errr
	}
	if rest.IsZero() {
		delete(p, id)
	} else {
		p[id] = rest
	}
	return taken, nil
}

// resolveUnallocated implements C5: it aggregates every live balance record
// attached to tx's spent inputs into a pool, marking each such outpoint
// spent as it goes. An input whose outpoint carries no rune balances
// contributes nothing and is not an error (spec §4.5).
func (p *Processor) resolveUnallocated(tx *wire.MsgTx) (pool, er.R) {
	result := pool{}
	for _, in := range tx.TxIn {
		balances, errr := p.store.LoadBalancesByOutpoint(in.PreviousOutPoint)
		if errr != nil {
			return nil, errr
		}
		if len(balances) == 0 {
			continue
		}
		for _, bal := range balances {
			if bal.Spent {
				continue
			}
			if errr := result.add(bal.RuneId, runes.NewLot(bal.Amount)); errr != nil {
				return nil, errr
			}
		}
		if errr := p.batch.MarkOutpointSpent(in.PreviousOutPoint); errr != nil {
			return nil, errr
		}
	}
	return result, nil
}
