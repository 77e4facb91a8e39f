package runes

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLotAddSub(t *testing.T) {
	a := NewLotU64(10)
	b := NewLotU64(4)

	sum, err := a.Add(b)
	require.Nil(t, err)
	require.Equal(t, "14", sum.String())

	diff, err := a.Sub(b)
	require.Nil(t, err)
	require.Equal(t, "6", diff.String())
}

func TestLotSubUnderflow(t *testing.T) {
	a := NewLotU64(1)
	b := NewLotU64(2)

	_, err := a.Sub(b)
	require.NotNil(t, err)
	require.True(t, ErrNegative.Is(err))
}

func TestLotAddOverflow(t *testing.T) {
	a := NewLot(maxLot)
	b := NewLotU64(1)

	_, err := a.Add(b)
	require.NotNil(t, err)
	require.True(t, ErrOverflow.Is(err))
}

func TestLotMin(t *testing.T) {
	a := NewLotU64(3)
	b := NewLotU64(7)
	require.Equal(t, a, a.Min(b))
	require.Equal(t, a, b.Min(a))
}

func TestLotIsZero(t *testing.T) {
	require.True(t, ZeroLot().IsZero())
	require.True(t, NewLot(nil).IsZero())
	require.False(t, NewLotU64(1).IsZero())
}

func TestLotDivMod(t *testing.T) {
	quotient, remainder := NewLotU64(10).DivMod(3)
	require.Equal(t, "3", quotient.String())
	require.Equal(t, 1, remainder)

	quotient, remainder = NewLotU64(9).DivMod(3)
	require.Equal(t, "3", quotient.String())
	require.Equal(t, 0, remainder)
}

func TestLotDivModNonPositiveCount(t *testing.T) {
	l := NewLotU64(10)
	quotient, remainder := l.DivMod(0)
	require.Equal(t, l, quotient)
	require.Equal(t, 0, remainder)
}

func TestNewLotCopiesNotAliases(t *testing.T) {
	v := big.NewInt(5)
	l := NewLot(v)
	v.SetInt64(99)
	require.Equal(t, "5", l.String())
}
