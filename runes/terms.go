package runes

import "math/big"

// Terms defines an etching's mint window and the per-mint amount (spec §3).
// Any bound left nil is open on that side.
type Terms struct {
	Amount      *big.Int
	Cap         *big.Int
	HeightStart *uint64
	HeightEnd   *uint64
	OffsetStart *uint64
	OffsetEnd   *uint64
}

// startHeight combines the absolute and etching-relative start bounds,
// taking the later (more restrictive) of the two when both are present.
func (t *Terms) startHeight(etchingBlock uint64) *uint64 {
	var abs, rel *uint64
	if t.HeightStart != nil {
		abs = t.HeightStart
	}
	if t.OffsetStart != nil {
		v := etchingBlock + *t.OffsetStart
		rel = &v
	}
	return laterOf(abs, rel)
}

// endHeight combines the absolute and etching-relative end bounds, taking
// the earlier (more restrictive) of the two when both are present.
func (t *Terms) endHeight(etchingBlock uint64) *uint64 {
	var abs, rel *uint64
	if t.HeightEnd != nil {
		abs = t.HeightEnd
	}
	if t.OffsetEnd != nil {
		v := etchingBlock + *t.OffsetEnd
		rel = &v
	}
	return earlierOf(abs, rel)
}

func laterOf(a, b *uint64) *uint64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a >= *b {
		return a
	}
	return b
}

func earlierOf(a, b *uint64) *uint64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a <= *b {
		return a
	}
	return b
}
