package indexer

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/btcrunes/runeindexer/runes"
)

func TestProcessBlockSkipsBelowActivation(t *testing.T) {
	store := newFakeStore()
	d := NewDriver(store, nil)
	block := &wire.MsgBlock{Header: wire.BlockHeader{Timestamp: time.Unix(0, 0)}}

	errr := d.ProcessBlock(runes.FirstRuneHeight-1, block, nil)
	require.Nil(t, errr)
}

func TestProcessBlockWithNoRunestonesIsANoOp(t *testing.T) {
	store := newFakeStore()
	d := NewDriver(store, nil)
	tx := wire.NewMsgTx(2)
	tx.AddTxOut(&wire.TxOut{PkScript: []byte{0x76, 0xa9}, Value: 1000})
	block := &wire.MsgBlock{
		Header:       wire.BlockHeader{Timestamp: time.Unix(1700000000, 0)},
		Transactions: []*wire.MsgTx{tx},
	}

	errr := d.ProcessBlock(runes.FirstRuneHeight, block, nil)
	require.Nil(t, errr)
	require.Empty(t, store.entries)
}
