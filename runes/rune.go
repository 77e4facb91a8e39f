package runes

import (
	"math/big"
)

// Rune is the u128 numeric identity of an etched rune (spec §3). Display
// names are the bijective base-26 encoding of this number (0 is A, 25 is Z,
// 26 is AA, and so on), with SpacedRune layering the user-chosen spacer
// bitmap on top for rendering.
type Rune struct {
	v *big.Int
}

// Reserved is the first value in the block of names the protocol reserves
// for itself; any rune whose numeric value is >= Reserved can only be
// produced by RuneReserved (etching with no explicit name), never chosen by
// an etcher.
var Reserved = bigFromString("6402364363415443603228541259936211926")

func bigFromString(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("runes: invalid constant " + s)
	}
	return v
}

// NewRune wraps a numeric value as a Rune. v is copied, not retained.
func NewRune(v *big.Int) Rune {
	if v == nil {
		return Rune{v: new(big.Int)}
	}
	return Rune{v: new(big.Int).Set(v)}
}

// NewRuneU64 wraps a uint64 as a Rune.
func NewRuneU64(v uint64) Rune {
	return Rune{v: new(big.Int).SetUint64(v)}
}

func (r Rune) n() *big.Int {
	if r.v == nil {
		return new(big.Int)
	}
	return r.v
}

// Value returns the numeric identity. The caller must not mutate it.
func (r Rune) Value() *big.Int {
	return r.n()
}

// Cmp orders runes by numeric value, the order used to test against the
// height-dependent minimum (spec §4.7).
func (r Rune) Cmp(o Rune) int {
	return r.n().Cmp(o.n())
}

// IsReserved reports whether r falls in the block the protocol reserves for
// runes with no explicit name (spec §4.7, "rune is reserved").
func (r Rune) IsReserved() bool {
	return r.n().Cmp(Reserved) >= 0
}

// RuneReserved synthesizes the rune assigned to an etching that gave no
// explicit name, deriving it from the etching transaction's position the
// same way the reference implementation does: Reserved + (block<<32 | tx).
func RuneReserved(block uint64, tx uint32) Rune {
	offset := new(big.Int).Lsh(new(big.Int).SetUint64(block), 32)
	offset.Or(offset, new(big.Int).SetUint64(uint64(tx)))
	return Rune{v: new(big.Int).Add(Reserved, offset)}
}

// Commitment returns the little-endian minimal encoding of the rune's
// numeric value: a 16-byte little-endian representation with trailing zero
// bytes trimmed. This is the exact byte string the commitment verifier (C4)
// looks for in a taproot witness push.
func (r Rune) Commitment() []byte {
	v := r.n()
	buf := make([]byte, 16)
	b := v.Bytes() // big-endian, no leading zeros
	for i, bb := range b {
		buf[len(b)-1-i] = bb
	}
	end := len(buf)
	for end > 0 && buf[end-1] == 0 {
		end--
	}
	return buf[:end]
}

const runeBase = 26

// String renders the rune as its bijective base-26 display name.
func (r Rune) String() string {
	n := new(big.Int).Add(r.n(), big.NewInt(1))
	if n.Sign() <= 0 {
		return ""
	}
	var out []byte
	base := big.NewInt(runeBase)
	one := big.NewInt(1)
	for n.Sign() > 0 {
		n.Sub(n, one)
		m := new(big.Int)
		n.DivMod(n, base, m)
		out = append([]byte{byte('A' + m.Int64())}, out...)
	}
	return string(out)
}

// ParseRune parses the bijective base-26 display name back into a Rune.
func ParseRune(s string) (Rune, bool) {
	if len(s) == 0 {
		return Rune{}, false
	}
	n := new(big.Int)
	base := big.NewInt(runeBase)
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return Rune{}, false
		}
		n.Mul(n, base)
		n.Add(n, big.NewInt(int64(c-'A'+1)))
	}
	n.Sub(n, big.NewInt(1))
	return Rune{v: n}, true
}

// countBelowLength returns the number of distinct rune names strictly
// shorter than length characters: 26 + 26^2 + ... + 26^(length-1).
func countBelowLength(length int) *big.Int {
	total := new(big.Int)
	p := big.NewInt(1)
	base := big.NewInt(runeBase)
	for i := 1; i < length; i++ {
		p.Mul(p, base)
		total.Add(total, p)
	}
	return total
}

const (
	// FirstRuneHeight is the mainnet activation height of the protocol.
	FirstRuneHeight = 840000
	// SubsidyHalvingInterval matches the Bitcoin subsidy schedule; the
	// minimum permissible rune name length steps down once per twelfth of
	// an interval for one full halving period after activation.
	SubsidyHalvingInterval = 210000
	// startingMinimumLength is the longest name permitted at activation.
	startingMinimumLength = 13
)

// MinimumAtHeight returns the smallest rune value permitted at height: the
// first name of the current minimum length, so every shorter name compares
// below it. The schedule mirrors the reference implementation's behavior of opening
// up shorter (and therefore more desirable) names gradually over the first
// halving interval after activation, then leaving the minimum at one
// character permanently. Spec §4.7 only specifies "below the
// height-dependent minimum"; this stepped schedule is the concrete rule
// (see DESIGN.md).
func MinimumAtHeight(height uint64) Rune {
	interval := uint64(SubsidyHalvingInterval / 12)
	if height < FirstRuneHeight {
		return NewRune(countBelowLength(startingMinimumLength))
	}
	steps := (height - FirstRuneHeight) / interval
	length := int64(startingMinimumLength) - int64(steps)
	if length < 1 {
		length = 1
	}
	return NewRune(countBelowLength(int(length)))
}
