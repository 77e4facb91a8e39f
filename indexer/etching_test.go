package indexer

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/btcrunes/runeindexer/internal/runestone"
	"github.com/btcrunes/runeindexer/runes"
)

func TestTryEtchNoArtifactReturnsNil(t *testing.T) {
	p := NewProcessor(newFakeStore(), nil, 0)
	result, errr := p.tryEtch(nil, 900000, 0)
	require.Nil(t, errr)
	require.Nil(t, result)
}

func TestTryEtchRunestoneWithoutNameGetsReservedRune(t *testing.T) {
	p := NewProcessor(newFakeStore(), nil, 0)
	art := &runestone.Artifact{Runestone: &runestone.Runestone{Etching: &runestone.Etching{}}}

	result, errr := p.tryEtch(art, 900000, 3)
	require.Nil(t, errr)
	require.NotNil(t, result)
	require.Equal(t, runes.Id{Block: 900000, Tx: 3}, result.Id)
	require.True(t, result.Rune.IsReserved())
	require.Equal(t, runes.RuneReserved(900000, 3).String(), result.Rune.String())
}

func TestTryEtchCenotaphWithoutNameDoesNotEtch(t *testing.T) {
	p := NewProcessor(newFakeStore(), nil, 0)
	art := &runestone.Artifact{Cenotaph: &runestone.Cenotaph{}}

	result, errr := p.tryEtch(art, 900000, 1)
	require.Nil(t, errr)
	require.Nil(t, result) // no etching struct at all means no etch was attempted
}

func TestTryEtchCenotaphWithNameStillGoesThroughValidation(t *testing.T) {
	// A cenotaph carrying a named etching is not exempt from the same
	// minimum/reserved/existing/commitment gauntlet a runestone etching
	// goes through — unlike the no-name case, it does not short-circuit.
	p := NewProcessor(newFakeStore(), nil, 0)
	reserved := runes.RuneReserved(1, 1)
	art := &runestone.Artifact{Cenotaph: &runestone.Cenotaph{Etching: &reserved}}

	result, errr := p.tryEtch(art, 900000, 1)
	require.Nil(t, errr)
	require.Nil(t, result)
}

func TestTryEtchRejectsNameBelowMinimum(t *testing.T) {
	p := NewProcessor(newFakeStore(), nil, 0)
	// A single-character name is well below the minimum permitted length
	// right at activation height.
	tooShort := runes.NewRuneU64(0)
	art := &runestone.Artifact{Runestone: &runestone.Runestone{
		Etching: &runestone.Etching{Rune: &tooShort},
	}}

	result, errr := p.tryEtch(art, runes.FirstRuneHeight, 0)
	require.Nil(t, errr)
	require.Nil(t, result)
}

func TestTryEtchRejectsReservedName(t *testing.T) {
	p := NewProcessor(newFakeStore(), nil, 0)
	reserved := runes.RuneReserved(1, 1)
	art := &runestone.Artifact{Runestone: &runestone.Runestone{
		Etching: &runestone.Etching{Rune: &reserved},
	}}

	result, errr := p.tryEtch(art, 900000, 0)
	require.Nil(t, errr)
	require.Nil(t, result)
}

func TestTryEtchRejectsAlreadyEtchedName(t *testing.T) {
	store := newFakeStore()
	// A large, non-reserved numeric value: well above the minimum-length
	// threshold at this height, well below the reserved-name floor.
	existingRune := runes.NewRune(big.NewInt(1_000_000_000_000_000))
	store.putEntry(&runes.Entry{
		Id:         runes.Id{Block: 840000, Tx: 0},
		SpacedRune: runes.SpacedRune{Rune: existingRune},
		Premine:    new(big.Int), Mints: new(big.Int), Burned: new(big.Int),
	})

	p := NewProcessor(store, nil, 0)
	art := &runestone.Artifact{Runestone: &runestone.Runestone{
		Etching: &runestone.Etching{Rune: &existingRune},
	}}
	result, errr := p.tryEtch(art, 900000, 5)
	require.Nil(t, errr)
	require.Nil(t, result)
}

func TestBuildEntryFromRunestoneEtching(t *testing.T) {
	divisibility := uint8(2)
	spacers := uint32(0b1)
	symbol := '$'
	premine := big.NewInt(1000)
	terms := &runes.Terms{Amount: big.NewInt(10), Cap: big.NewInt(5)}

	res := &etchResult{
		Id:   runes.Id{Block: 900000, Tx: 4},
		Rune: runes.NewRuneU64(26),
		Fields: &runestone.Etching{
			Divisibility: &divisibility,
			Spacers:      &spacers,
			Symbol:       &symbol,
			Premine:      premine,
			Terms:        terms,
			Turbo:        true,
		},
	}
	txid := chainhash.Hash{0xaa}
	entry := buildEntry(res, 900000, txid, 1700000000, 42)

	require.Equal(t, res.Id, entry.Id)
	require.Equal(t, uint64(900000), entry.Block)
	require.Equal(t, txid, entry.Etching)
	require.Equal(t, uint64(42), entry.Number)
	require.Equal(t, uint8(2), entry.Divisibility)
	require.Equal(t, uint32(0b1), entry.SpacedRune.Spacers)
	require.Equal(t, '$', *entry.Symbol)
	require.True(t, entry.Turbo)
	require.Equal(t, "1000", entry.Premine.String())
	require.Equal(t, "0", entry.Mints.String())
	require.Equal(t, "0", entry.Burned.String())
	require.Same(t, terms, entry.Terms)
}

func TestBuildEntryFromCenotaphEtchingIsZeroed(t *testing.T) {
	res := &etchResult{
		Id:     runes.Id{Block: 900000, Tx: 1},
		Rune:   runes.RuneReserved(900000, 1),
		Fields: nil,
	}
	entry := buildEntry(res, 900000, chainhash.Hash{}, 0, 7)

	require.Equal(t, uint8(0), entry.Divisibility)
	require.Nil(t, entry.Symbol)
	require.False(t, entry.Turbo)
	require.Equal(t, "0", entry.Premine.String())
	require.Nil(t, entry.Terms)
}
