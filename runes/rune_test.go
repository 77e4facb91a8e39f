package runes

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuneStringRoundTrip(t *testing.T) {
	cases := []struct {
		n    uint64
		name string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, c := range cases {
		r := NewRuneU64(c.n)
		require.Equal(t, c.name, r.String())

		parsed, ok := ParseRune(c.name)
		require.True(t, ok)
		require.Equal(t, 0, parsed.Cmp(r))
	}
}

func TestParseRuneRejectsLowercaseAndEmpty(t *testing.T) {
	_, ok := ParseRune("")
	require.False(t, ok)

	_, ok = ParseRune("foo")
	require.False(t, ok)
}

func TestRuneIsReserved(t *testing.T) {
	require.False(t, NewRune(new(big.Int).Sub(Reserved, big.NewInt(1))).IsReserved())
	require.True(t, NewRune(Reserved).IsReserved())
}

func TestRuneReservedDeterministic(t *testing.T) {
	a := RuneReserved(840000, 1)
	b := RuneReserved(840000, 1)
	require.Equal(t, 0, a.Cmp(b))
	require.True(t, a.IsReserved())

	c := RuneReserved(840000, 2)
	require.NotEqual(t, 0, a.Cmp(c))
}

func TestRuneCommitmentTrimsTrailingZeros(t *testing.T) {
	// 1 little-endian in 16 bytes is 0x01 followed by 15 zero bytes; the
	// commitment encoding trims those trailing zeros down to one byte.
	r := NewRuneU64(1)
	require.Equal(t, []byte{0x01}, r.Commitment())

	require.Equal(t, []byte{}, NewRuneU64(0).Commitment())
}

func TestRuneCommitmentLength(t *testing.T) {
	big16 := new(big.Int).Lsh(big.NewInt(1), 127)
	c := NewRune(big16).Commitment()
	require.LessOrEqual(t, len(c), 16)
}

func TestMinimumAtHeightStepsDown(t *testing.T) {
	atActivation := MinimumAtHeight(FirstRuneHeight)
	muchLater := MinimumAtHeight(FirstRuneHeight + SubsidyHalvingInterval)
	// The minimum only ever gets smaller (shorter names open up) as height
	// increases; it never goes back up.
	require.True(t, muchLater.Cmp(atActivation) <= 0)

	beforeActivation := MinimumAtHeight(FirstRuneHeight - 1)
	require.Equal(t, 0, beforeActivation.Cmp(atActivation))
}
