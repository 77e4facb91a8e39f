package runes

import "fmt"

// Id names the transaction that etched a rune: the block it was mined in
// and the rune-etching transaction's index within that block. Total order
// is (Block, Tx). The zero value, Id{}, is the sentinel meaning "the rune
// etched by the current transaction" when it appears in an edict (spec §3).
type Id struct {
	Block uint64
	Tx    uint32
}

// IsZero reports whether id is the current-transaction sentinel.
func (id Id) IsZero() bool {
	return id.Block == 0 && id.Tx == 0
}

// Less implements the total order by (Block, Tx).
func (id Id) Less(o Id) bool {
	if id.Block != o.Block {
		return id.Block < o.Block
	}
	return id.Tx < o.Tx
}

// String renders the conventional block:tx form used in persistence and logs.
func (id Id) String() string {
	return fmt.Sprintf("%d:%d", id.Block, id.Tx)
}
