package runes

import (
	"math/big"

	"github.com/btcrunes/runeindexer/internal/er"
)

// ErrType classifies internal arithmetic faults; these never surface to a
// caller as a validation result, they abort block processing (spec §7,
// Structural).
var ErrType = er.NewErrorType("runes.Err")

var ErrOverflow = ErrType.Code("ErrOverflow")
var ErrNegative = ErrType.Code("ErrNegative")

var maxLot = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Lot is the indexer's internal 128-bit balance type. The protocol
// guarantees cap * amount <= u128::MAX for every well-formed etching, so an
// overflow here always indicates a bug or corrupted persisted state, never a
// legitimate value. There is no saturation: Add/Sub abort on overflow via the
// returned er.R, which callers are expected to treat as fatal.
//
// Lot is backed by math/big.Int rather than two uint64 words because every
// amount already arrives as a *big.Int out of the runestone decoder (see
// internal/runestone), and re-deriving a fixed-width type from it on every
// operation would just move the bounds check around, not remove it.
type Lot struct {
	v *big.Int
}

// NewLot wraps v as a Lot. v is not mutated or retained; NewLot copies it.
func NewLot(v *big.Int) Lot {
	if v == nil {
		return Lot{v: new(big.Int)}
	}
	return Lot{v: new(big.Int).Set(v)}
}

// NewLotU64 wraps a uint64 as a Lot.
func NewLotU64(v uint64) Lot {
	return Lot{v: new(big.Int).SetUint64(v)}
}

// ZeroLot is the additive identity.
func ZeroLot() Lot {
	return Lot{v: new(big.Int)}
}

func (l Lot) n() *big.Int {
	if l.v == nil {
		return new(big.Int)
	}
	return l.v
}

// Big returns the underlying value. The caller must not mutate it.
func (l Lot) Big() *big.Int {
	return l.n()
}

// String returns the value as a base-10 string, the representation used when
// persisting a Lot (spec §6, "amounts are exact-decimal").
func (l Lot) String() string {
	return l.n().String()
}

// IsZero reports whether the lot holds no balance.
func (l Lot) IsZero() bool {
	return l.n().Sign() == 0
}

// Cmp compares two lots the way big.Int.Cmp does.
func (l Lot) Cmp(o Lot) int {
	return l.n().Cmp(o.n())
}

func checkRange(v *big.Int) er.R {
	if v.Sign() < 0 {
		return ErrNegative.New(v.String(), nil)
	}
	if v.Cmp(maxLot) > 0 {
		return ErrOverflow.New(v.String(), nil)
	}
	return nil
}

// Add returns l+o, checked against the u128 range.
func (l Lot) Add(o Lot) (Lot, er.R) {
	sum := new(big.Int).Add(l.n(), o.n())
	if err := checkRange(sum); err != nil {
		return Lot{}, err
	}
	return Lot{v: sum}, nil
}

// Sub returns l-o, checked against underflow.
func (l Lot) Sub(o Lot) (Lot, er.R) {
	diff := new(big.Int).Sub(l.n(), o.n())
	if err := checkRange(diff); err != nil {
		return Lot{}, err
	}
	return Lot{v: diff}, nil
}

// Min returns the lesser of l and o.
func (l Lot) Min(o Lot) Lot {
	if l.Cmp(o) <= 0 {
		return l
	}
	return o
}

// DivMod divides l by a positive usize count, returning the quotient and the
// remainder. Used by the zero-amount distribute-to-all rule (C6): the
// remainder is handed out one extra unit at a time to the first `remainder`
// destinations in output order.
func (l Lot) DivMod(n int) (quotient Lot, remainder int) {
	if n <= 0 {
		return l, 0
	}
	bn := big.NewInt(int64(n))
	q, r := new(big.Int).QuoRem(l.n(), bn, new(big.Int))
	return Lot{v: q}, int(r.Int64())
}
