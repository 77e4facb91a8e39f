package runes

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// EventType tags the four kinds of append-only protocol events (spec §3).
// The numeric values match the rune_event.event_type column contract (§6).
type EventType int

const (
	EventEtched EventType = iota + 1
	EventMinted
	EventTransferred
	EventBurned
)

// Event is one row of the append-only event log. Fields not applicable to
// a given Type are left at their zero value.
type Event struct {
	Type        EventType
	BlockHeight uint64
	Timestamp   uint64 // seconds-since-epoch block time (spec §6), not BlockHeight
	Txid        chainhash.Hash
	RuneId      Id
	Amount      *big.Int      // Minted, Transferred, Burned
	Outpoint    wire.OutPoint // Transferred
}
