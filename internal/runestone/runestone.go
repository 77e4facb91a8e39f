// Package runestone decodes the Runes protocol's OP_RETURN payload into an
// Artifact: either a well-formed Runestone or a Cenotaph. This is the one
// piece spec.md explicitly treats as "assumed available as a library and
// not respecified" (spec §1); it is grounded directly on the real decoder
// retrieved from BoostyLabs/blockchain (bitcoin/ord/runes/runestone.go),
// rewritten against this repo's own Rune/Id types and trimmed to decode-only
// since the indexer never authors runestones.
package runestone

import (
	"bytes"
	"math/big"

	"github.com/aviate-labs/leb128"
	"github.com/btcsuite/btcd/txscript"

	"github.com/btcrunes/runeindexer/runes"
)

// MaxDivisibility is the largest permitted divisibility value.
const MaxDivisibility byte = 38

// MaxSpacers is the largest permitted spacer bitmap.
const MaxSpacers uint32 = 0b00000111_11111111_11111111_11111111

// Edict is a single allocation instruction inside a runestone (spec §3, §4.6).
type Edict struct {
	Id     runes.Id
	Amount *big.Int
	Output uint32
}

// Etching describes a new rune definition carried by a runestone.
type Etching struct {
	Divisibility *uint8
	Premine      *big.Int
	Rune         *runes.Rune
	Spacers      *uint32
	Symbol       *rune
	Terms        *runes.Terms
	Turbo        bool
}

// Runestone is a structurally valid decoded payload.
type Runestone struct {
	Edicts  []Edict
	Etching *Etching
	Mint    *runes.Id
	Pointer *uint32
}

// Cenotaph is a runestone that failed validation; protocol mandates that
// every unallocated balance in the transaction burns (spec §3).
type Cenotaph struct {
	Etching *runes.Rune
	Mint    *runes.Id
}

// Artifact is the result of decoding a transaction's OP_RETURN payload:
// exactly one of Runestone or Cenotaph is non-nil, or both are nil if the
// transaction carries no runestone at all.
type Artifact struct {
	Runestone *Runestone
	Cenotaph  *Cenotaph
}

// IsPossibleRunestone reports whether script looks like the start of a
// runestone payload, without fully decoding it.
func IsPossibleRunestone(script []byte) bool {
	switch {
	case len(script) < 4: // OP_RETURN + OP_13 + OP_PUSH_<num> + data(>=1 byte).
		return false
	case script[0] != txscript.OP_RETURN:
		return false
	case script[1] != txscript.OP_13:
		return false
	case script[2] < txscript.OP_DATA_1 || script[2] > txscript.OP_DATA_75:
		return false
	}
	return true
}

// Decode parses a single OP_RETURN script into an Artifact. It returns
// (nil, nil) when the script isn't a runestone payload at all (most
// outputs), and a Cenotaph when the payload is present but structurally
// invalid. Its error result is always nil: malformed protocol data is
// exactly what Cenotaph represents, and a nil or short script is simply not
// a runestone.
func Decode(script []byte) (*Artifact, error) {
	if !IsPossibleRunestone(script) {
		return nil, nil
	}

	payload, ok := preparePayload(script)
	if !ok {
		return &Artifact{Cenotaph: &Cenotaph{}}, nil
	}

	seq, ok := payloadIntoIntSequence(payload)
	if !ok {
		return &Artifact{Cenotaph: &Cenotaph{}}, nil
	}

	return decodeSequence(seq), nil
}

// preparePayload strips the OP_RETURN/OP_13/OP_PUSH_<n> framing and
// concatenates the pushed data segments.
func preparePayload(script []byte) ([]byte, bool) {
	if len(script) < 4 || script[0] != txscript.OP_RETURN || script[1] != txscript.OP_13 {
		return nil, false
	}

	payload := make([]byte, 0, len(script)-3)
	r := bytes.NewReader(script[2:])
	for r.Len() > 0 {
		op, err := r.ReadByte()
		if err != nil {
			return nil, false
		}
		if op < txscript.OP_DATA_1 || op > txscript.OP_DATA_75 {
			return nil, false
		}
		data := make([]byte, op)
		if _, err := r.Read(data); err != nil {
			return nil, false
		}
		payload = append(payload, data...)
	}
	return payload, true
}

func payloadIntoIntSequence(payload []byte) ([]*big.Int, bool) {
	seq := make([]*big.Int, 0)
	r := bytes.NewReader(payload)
	for r.Len() > 0 {
		n, err := leb128.DecodeUnsigned(r)
		if err != nil {
			return nil, false
		}
		seq = append(seq, n)
	}
	return seq, true
}

// decodeSequence walks the integer sequence, splitting it into tagged
// fields followed by the edict body (TagBody), then validates the fields
// into either a Runestone or a Cenotaph.
func decodeSequence(seq []*big.Int) *Artifact {
	fields := map[Tag][]*big.Int{}
	var body []*big.Int

	i := 0
	for i < len(seq) {
		tag := Tag(seq[i].Uint64())
		i++
		if tag == TagBody {
			body = seq[i:]
			break
		}
		if i >= len(seq) {
			// truncated: a tag with no value.
			return &Artifact{Cenotaph: &Cenotaph{}}
		}
		fields[tag] = append(fields[tag], seq[i])
		i++
	}

	edicts, ok := decodeEdicts(body)
	if !ok {
		return &Artifact{Cenotaph: &Cenotaph{}}
	}

	var isEtching, hasTerms, turbo bool
	if flagsVals, present := fields[TagFlags]; present {
		if len(flagsVals) != 1 {
			return &Artifact{Cenotaph: &Cenotaph{}}
		}
		v := flagsVals[0].Uint64()
		isEtching = hasFlag(v, FlagEtching)
		hasTerms = hasFlag(v, FlagTerms)
		turbo = hasFlag(v, FlagTurbo)
		known := uint64(0)
		if isEtching {
			known |= uint64(FlagEtching)
		}
		if hasTerms {
			known |= uint64(FlagTerms)
		}
		if turbo {
			known |= uint64(FlagTurbo)
		}
		if v&^known != 0 {
			return &Artifact{Cenotaph: &Cenotaph{}}
		}
	}

	runestone := &Runestone{}

	if p, ok := takeOne(fields, TagPointer); ok {
		v := uint32(p.Uint64())
		runestone.Pointer = &v
	}

	if mintVals, present := fields[TagMint]; present {
		if len(mintVals) != 2 {
			return &Artifact{Cenotaph: &Cenotaph{}}
		}
		id := runes.Id{Block: mintVals[0].Uint64(), Tx: uint32(mintVals[1].Uint64())}
		runestone.Mint = &id
	}

	if isEtching {
		e := &Etching{Turbo: turbo}

		if v, ok := takeOne(fields, TagDivisibility); ok {
			d := uint8(v.Uint64())
			if d > MaxDivisibility {
				return &Artifact{Cenotaph: &Cenotaph{}}
			}
			e.Divisibility = &d
		}
		if v, ok := takeOne(fields, TagPremine); ok {
			e.Premine = v
		}
		if v, ok := takeOne(fields, TagRune); ok {
			r := runes.NewRune(v)
			e.Rune = &r
		}
		if v, ok := takeOne(fields, TagSpacers); ok {
			s := uint32(v.Uint64())
			if s > MaxSpacers {
				return &Artifact{Cenotaph: &Cenotaph{}}
			}
			e.Spacers = &s
		}
		if v, ok := takeOne(fields, TagSymbol); ok {
			sym := rune(v.Int64())
			e.Symbol = &sym
		}

		if hasTerms {
			terms := &runes.Terms{}
			if v, ok := takeOne(fields, TagAmount); ok {
				terms.Amount = v
			}
			if v, ok := takeOne(fields, TagCap); ok {
				terms.Cap = v
			}
			if v, ok := takeOne(fields, TagHeightStart); ok {
				h := v.Uint64()
				terms.HeightStart = &h
			}
			if v, ok := takeOne(fields, TagHeightEnd); ok {
				h := v.Uint64()
				terms.HeightEnd = &h
			}
			if v, ok := takeOne(fields, TagOffsetStart); ok {
				h := v.Uint64()
				terms.OffsetStart = &h
			}
			if v, ok := takeOne(fields, TagOffsetEnd); ok {
				h := v.Uint64()
				terms.OffsetEnd = &h
			}
			e.Terms = terms
		}

		runestone.Etching = e
	}

	runestone.Edicts = edicts

	return &Artifact{Runestone: runestone}
}

// takeOne requires a tag to carry exactly one value; any other count is
// ignored (treated as absent) rather than rejecting the whole payload,
// matching the lenient style of the retrieved decoder.
func takeOne(fields map[Tag][]*big.Int, t Tag) (*big.Int, bool) {
	vals, ok := fields[t]
	if !ok || len(vals) != 1 {
		return nil, false
	}
	return vals[0], true
}

// decodeEdicts turns the flat post-Body integer sequence into Edicts. Each
// edict is 4 integers: a delta-encoded rune Id (block delta, then either a
// tx delta when the block delta is zero or an absolute tx otherwise),
// amount, and output index.
func decodeEdicts(body []*big.Int) ([]Edict, bool) {
	if len(body)%4 != 0 {
		return nil, false
	}
	edicts := make([]Edict, 0, len(body)/4)
	var id runes.Id
	for i := 0; i+3 < len(body); i += 4 {
		blockDelta := body[i].Uint64()
		txField := body[i+1].Uint64()
		amount := body[i+2]
		output := uint32(body[i+3].Uint64())

		if blockDelta == 0 {
			id.Tx += uint32(txField)
		} else {
			id.Block += blockDelta
			id.Tx = uint32(txField)
		}

		edicts = append(edicts, Edict{
			Id:     id,
			Amount: amount,
			Output: output,
		})
	}
	return edicts, true
}
