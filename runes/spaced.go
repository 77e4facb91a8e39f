package runes

import "strings"

// SpacedRune pairs a Rune with the display-only spacer bitmap an etcher
// chose (spec §3); bit i of Spacers places a bullet after the i-th letter of
// the rune's base-26 name.
type SpacedRune struct {
	Rune    Rune
	Spacers uint32
}

// String renders the spaced display form, e.g. "FOO•BAR".
func (s SpacedRune) String() string {
	name := s.Rune.String()
	var b strings.Builder
	for i, c := range name {
		b.WriteRune(c)
		if i < len(name)-1 && s.Spacers&(1<<uint(i)) != 0 {
			b.WriteRune('•')
		}
	}
	return b.String()
}
