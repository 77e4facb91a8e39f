package indexer

import (
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/btcrunes/runeindexer/internal/runestone"
	"github.com/btcrunes/runeindexer/runes"
)

func TestMintTargetPrefersRunestoneThenCenotaph(t *testing.T) {
	require.Nil(t, mintTarget(nil))

	id := runes.Id{Block: 1, Tx: 2}
	require.Equal(t, &id, mintTarget(&runestone.Artifact{Runestone: &runestone.Runestone{Mint: &id}}))
	require.Equal(t, &id, mintTarget(&runestone.Artifact{Cenotaph: &runestone.Cenotaph{Mint: &id}}))
	require.Nil(t, mintTarget(&runestone.Artifact{Runestone: &runestone.Runestone{}}))
}

func TestDefaultOutputUsesPointerWhenPresent(t *testing.T) {
	p := uint32(2)
	tx := &wire.MsgTx{TxOut: []*wire.TxOut{
		{PkScript: []byte{0x76}}, {PkScript: []byte{0x76}}, {PkScript: []byte{txscript.OP_RETURN}},
	}}
	vout, ok := defaultOutput(&p, tx)
	require.True(t, ok)
	require.Equal(t, uint32(2), vout)
}

func TestDefaultOutputFallsBackToFirstNonOpReturn(t *testing.T) {
	tx := &wire.MsgTx{TxOut: []*wire.TxOut{
		{PkScript: []byte{txscript.OP_RETURN}},
		{PkScript: []byte{0x76}},
	}}
	vout, ok := defaultOutput(nil, tx)
	require.True(t, ok)
	require.Equal(t, uint32(1), vout)
}

func TestDefaultOutputNoneWhenEveryOutputIsOpReturn(t *testing.T) {
	tx := &wire.MsgTx{TxOut: []*wire.TxOut{{PkScript: []byte{txscript.OP_RETURN}}}}
	_, ok := defaultOutput(nil, tx)
	require.False(t, ok)
}

func TestIsOpReturn(t *testing.T) {
	require.True(t, isOpReturn([]byte{txscript.OP_RETURN, 0x01}))
	require.False(t, isOpReturn([]byte{0x76, 0xa9}))
	require.False(t, isOpReturn(nil))
}

func TestDecodeArtifactFindsFirstRunestoneOutput(t *testing.T) {
	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_RETURN)
	builder.AddOp(txscript.OP_13)
	builder.AddData([]byte{0x00}) // a lone TagBody(0) marker: an empty, valid runestone
	script, err := builder.Script()
	require.NoError(t, err)

	tx := &wire.MsgTx{TxOut: []*wire.TxOut{
		{PkScript: []byte{0x76, 0xa9}},
		{PkScript: script},
	}}
	art, errr := decodeArtifact(tx)
	require.Nil(t, errr)
	require.NotNil(t, art)
	require.NotNil(t, art.Runestone)
	require.Nil(t, art.Cenotaph)
	require.Empty(t, art.Runestone.Edicts)
}

func TestDecodeArtifactNoRunestoneOutput(t *testing.T) {
	tx := &wire.MsgTx{TxOut: []*wire.TxOut{{PkScript: []byte{0x76, 0xa9}}}}
	art, errr := decodeArtifact(tx)
	require.Nil(t, errr)
	require.Nil(t, art)
}
