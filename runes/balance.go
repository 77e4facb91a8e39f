package runes

import (
	"math/big"

	"github.com/btcsuite/btcd/wire"
)

// Balance is a per-(outpoint, rune) balance record (spec §3). Records are
// never deleted: an outpoint that gets spent has its Spent flag set, it
// does not disappear.
type Balance struct {
	Outpoint  wire.OutPoint
	RuneId    Id
	Amount    *big.Int
	Spent     bool
	Address   string
	ScriptHex string
	Block     uint64
}
