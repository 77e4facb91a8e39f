package indexer

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/btcrunes/runeindexer/internal/er"
	"github.com/btcrunes/runeindexer/internal/runestone"
	"github.com/btcrunes/runeindexer/runes"
)

// etchResult is what C7 hands back to the processor: the assigned id, the
// rune it names, and (only for a well-formed Runestone etching) the decoded
// fields to build the RuneEntry from. A cenotaph etching carries a nil
// fields pointer — its entry gets zeroed divisibility/premine/terms per
// spec §4.7.
type etchResult struct {
	Id     runes.Id
	Rune   runes.Rune
	Fields *runestone.Etching // nil for a cenotaph etching
}

// tryEtch implements C7: it decides whether tx etches a new rune and, if
// so, assigns it a RuneId and returns the data needed to build its
// RuneEntry. It returns (nil, nil) whenever no etching happens at all,
// including every rejection case from spec §4.7 — rejection is a
// Validation outcome, not an error.
func (p *Processor) tryEtch(art *runestone.Artifact, height uint64, txIndex uint32) (*etchResult, er.R) {
	if art == nil {
		return nil, nil
	}

	var candidateName *runes.Rune
	var fields *runestone.Etching
	switch {
	case art.Cenotaph != nil:
		// A cenotaph's Etching field *is* the candidate name (there is no
		// separate decoded-fields block to omit it from); if it's nil, this
		// tx never attempted to etch anything and C7 yields None outright —
		// it does not fall through to the reserved-rune synthesis below.
		if art.Cenotaph.Etching == nil {
			return nil, nil
		}
		candidateName = art.Cenotaph.Etching
	case art.Runestone != nil && art.Runestone.Etching != nil:
		fields = art.Runestone.Etching
		candidateName = fields.Rune
	default:
		return nil, nil
	}

	var chosen runes.Rune
	if candidateName != nil {
		minimum := runes.MinimumAtHeight(height)
		if candidateName.Cmp(minimum) < 0 {
			return nil, nil
		}
		if candidateName.IsReserved() {
			return nil, nil
		}
		existing, errr := p.store.LoadEntryByRune(*candidateName)
		if errr != nil {
			return nil, errr
		}
		if existing != nil {
			return nil, nil
		}
		ok, errr := p.verifyCommitment(p.tx, height, *candidateName)
		if errr != nil {
			return nil, errr
		}
		if !ok {
			return nil, nil
		}
		chosen = *candidateName
	} else {
		chosen = runes.RuneReserved(height, txIndex)
	}

	id := runes.Id{Block: height, Tx: txIndex}
	return &etchResult{Id: id, Rune: chosen, Fields: fields}, nil
}

// buildEntry constructs the RuneEntry for a successful etching. number is
// the processor's monotonic rune-number counter value for this etch. Per
// spec §4.7, a cenotaph etching (res.Fields == nil) gets zeroed
// divisibility/premine/terms, no symbol, and turbo=false.
func buildEntry(res *etchResult, height uint64, txid chainhash.Hash, timestamp uint64, number uint64) *runes.Entry {
	e := &runes.Entry{
		Id:         res.Id,
		Block:      height,
		Etching:    txid,
		Number:     number,
		SpacedRune: runes.SpacedRune{Rune: res.Rune},
		Premine:    new(big.Int),
		Mints:      new(big.Int),
		Burned:     new(big.Int),
		Timestamp:  timestamp,
	}
	if res.Fields != nil {
		f := res.Fields
		if f.Divisibility != nil {
			e.Divisibility = *f.Divisibility
		}
		if f.Spacers != nil {
			e.SpacedRune.Spacers = *f.Spacers
		}
		e.Symbol = f.Symbol
		e.Turbo = f.Turbo
		if f.Premine != nil {
			e.Premine = f.Premine
		}
		e.Terms = f.Terms
	}
	return e
}
