package runes

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Entry is the persistent metadata a rune carries once etched (spec §3).
type Entry struct {
	Id          Id
	Block       uint64
	Etching     chainhash.Hash
	Number      uint64
	SpacedRune  SpacedRune
	Divisibility uint8
	Symbol      *rune
	Turbo       bool
	Premine     *big.Int
	Mints       *big.Int
	Burned      *big.Int
	Terms       *Terms
	Timestamp   uint64
}

// MintReason names why Mintable returned no amount (spec §4.2).
type MintReason int

const (
	MintOK MintReason = iota
	MintUnmintable
	MintNotStarted
	MintEnded
	MintCapped
)

// MintResult carries either the per-mint amount or the closed reason and,
// for NotStarted/Ended, the bound height that produced it (spec §4.2).
type MintResult struct {
	Reason MintReason
	Amount *big.Int
	Height uint64 // valid for MintNotStarted (start) and MintEnded (end)
	Cap    *big.Int // valid for MintCapped
}

// Mintable decides whether e can be minted at height, and for how much. The
// predicate is monotone: once it returns MintEnded or MintCapped for some
// height, it never returns MintOK for any later height or any later call
// with a higher Mints count (spec §8 invariant 6).
func (e *Entry) Mintable(height uint64) MintResult {
	if e.Terms == nil || e.Terms.Amount == nil {
		return MintResult{Reason: MintUnmintable}
	}

	if start := e.Terms.startHeight(e.Block); start != nil && *start > height {
		return MintResult{Reason: MintNotStarted, Height: *start}
	}

	if end := e.Terms.endHeight(e.Block); end != nil && height >= *end {
		return MintResult{Reason: MintEnded, Height: *end}
	}

	if e.Terms.Cap != nil {
		mints := e.Mints
		if mints == nil {
			mints = new(big.Int)
		}
		if mints.Cmp(e.Terms.Cap) >= 0 {
			return MintResult{Reason: MintCapped, Cap: new(big.Int).Set(e.Terms.Cap)}
		}
	}

	return MintResult{Reason: MintOK, Amount: new(big.Int).Set(e.Terms.Amount)}
}
