// Package storage defines the abstract persistence boundary the transaction
// processor (indexer.Processor) is built against (spec §4.3, §6), plus a
// MySQL-backed implementation of it.
package storage

import (
	"math/big"

	"github.com/btcsuite/btcd/wire"

	"github.com/btcrunes/runeindexer/internal/er"
	"github.com/btcrunes/runeindexer/runes"
)

// ErrType classifies storage faults. Every method on Store returns an er.R;
// a non-nil return that isn't one of the codes below is a Fatal error in
// the spec §7 sense and aborts the enclosing block.
var ErrType = er.NewErrorType("storage.Err")

// Absence is never represented as an error: LoadEntry and friends return
// (nil, nil) when the row doesn't exist, matching spec §4.3's "Return
// contract: absence is None, not an error."

// Store is the set of read operations plus the batch entry point the
// transaction processor needs.
// Implementations must make Commit atomic per spec §4.8 step 9: either
// every staged write for one transaction lands, or none does.
type Store interface {
	// LoadEntry returns the rune entry for id, or nil if it doesn't exist.
	LoadEntry(id runes.Id) (*runes.Entry, er.R)

	// LoadEntryByRune returns the rune entry whose SpacedRune.Rune equals r,
	// or nil. Used to detect re-etching of an existing name.
	LoadEntryByRune(r runes.Rune) (*runes.Entry, er.R)

	// LoadBalancesByOutpoint returns every (non-deleted) balance record for
	// outpoint, spent or not.
	LoadBalancesByOutpoint(outpoint wire.OutPoint) ([]runes.Balance, er.R)

	// MaxRuneNumber returns the highest assigned Entry.Number, or nil if no
	// rune has ever been etched.
	MaxRuneNumber() (*uint64, er.R)

	// Begin opens a transactional batch of mutations scoped to one
	// processed transaction (spec §4.8 step 9). Commit() or Rollback() must
	// be called exactly once.
	Begin() (Batch, er.R)
}

// Batch stages the mutations a single transaction's processing produces.
// None of them are required to be visible to LoadEntry/LoadBalancesByOutpoint
// calls against the same Store handle until Commit succeeds.
type Batch interface {
	MarkOutpointSpent(outpoint wire.OutPoint) er.R
	StoreEntry(id runes.Id, entry *runes.Entry) er.R
	UpdateMints(id runes.Id, mints *big.Int) er.R
	UpdateBurned(id runes.Id, burned *big.Int) er.R
	StoreBalances(balances []runes.Balance) er.R
	StoreEvents(events []runes.Event, rawRunestoneJSON string) er.R

	Commit() er.R
	Rollback() er.R
}
