package runes

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func heightPtr(h uint64) *uint64 { return &h }

func TestMintableUnmintableWithNoTerms(t *testing.T) {
	e := &Entry{Mints: big.NewInt(0)}
	result := e.Mintable(1000)
	require.Equal(t, MintUnmintable, result.Reason)
}

func TestMintableNotYetStarted(t *testing.T) {
	e := &Entry{
		Block: 100,
		Mints: big.NewInt(0),
		Terms: &Terms{Amount: big.NewInt(10), HeightStart: heightPtr(200)},
	}
	result := e.Mintable(150)
	require.Equal(t, MintNotStarted, result.Reason)
	require.Equal(t, uint64(200), result.Height)
}

func TestMintableEndedByAbsoluteHeight(t *testing.T) {
	e := &Entry{
		Block: 100,
		Mints: big.NewInt(0),
		Terms: &Terms{Amount: big.NewInt(10), HeightEnd: heightPtr(200)},
	}
	result := e.Mintable(200)
	require.Equal(t, MintEnded, result.Reason)
}

func TestMintableEndedByOffset(t *testing.T) {
	e := &Entry{
		Block: 100,
		Mints: big.NewInt(0),
		Terms: &Terms{Amount: big.NewInt(10), OffsetEnd: heightPtr(50)},
	}
	require.Equal(t, MintOK, e.Mintable(149).Reason)
	require.Equal(t, MintEnded, e.Mintable(150).Reason)
}

func TestMintableCapped(t *testing.T) {
	e := &Entry{
		Block: 100,
		Mints: big.NewInt(5),
		Terms: &Terms{Amount: big.NewInt(10), Cap: big.NewInt(5)},
	}
	result := e.Mintable(500)
	require.Equal(t, MintCapped, result.Reason)
}

func TestMintableOK(t *testing.T) {
	e := &Entry{
		Block: 100,
		Mints: big.NewInt(3),
		Terms: &Terms{Amount: big.NewInt(10), Cap: big.NewInt(5)},
	}
	result := e.Mintable(500)
	require.Equal(t, MintOK, result.Reason)
	require.Equal(t, "10", result.Amount.String())
}

// TestMintableMonotone exercises spec's invariant that once minting closes
// at some height, it never reopens at a later height or after Mints grows.
func TestMintableMonotone(t *testing.T) {
	e := &Entry{
		Block: 0,
		Mints: big.NewInt(0),
		Terms: &Terms{Amount: big.NewInt(1), Cap: big.NewInt(3), HeightEnd: heightPtr(1000)},
	}

	for height := uint64(0); height < 3000; height += 250 {
		result := e.Mintable(height)
		if result.Reason == MintOK {
			e.Mints.Add(e.Mints, result.Amount)
		} else if result.Reason == MintEnded || result.Reason == MintCapped {
			// Once closed, every subsequent height must also report closed.
			for later := height; later < 4000; later += 500 {
				require.NotEqual(t, MintOK, e.Mintable(later).Reason)
			}
			return
		}
	}
}

func TestTermsStartHeightTakesLaterBound(t *testing.T) {
	terms := &Terms{HeightStart: heightPtr(100), OffsetStart: heightPtr(50)}
	// etching block 70: offset bound resolves to 120, later than 100.
	start := terms.startHeight(70)
	require.Equal(t, uint64(120), *start)
}

func TestTermsEndHeightTakesEarlierBound(t *testing.T) {
	terms := &Terms{HeightEnd: heightPtr(500), OffsetEnd: heightPtr(50)}
	end := terms.endHeight(70)
	require.Equal(t, uint64(120), *end)
}
