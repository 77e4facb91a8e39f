package indexer

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/btcrunes/runeindexer/internal/er"
	"github.com/btcrunes/runeindexer/runes"
)

// CommitConfirmations is the protocol constant (spec §4.4 step 6): a named
// etching is only honored once its commitment transaction has this many
// confirmations.
const CommitConfirmations = 6

// verifyCommitment implements C4: it decides whether tx carries a taproot
// input whose witness pushes candidate.Commitment() and whose previous
// output is a v1 taproot script with at least CommitConfirmations
// confirmations at currentHeight (currentHeight - commitHeight + 1, so the
// commit block itself counts as one).
//
// Missing ancestor transactions are fatal (spec §4.4 step 3, §7); anything
// else about a given input that disqualifies it (no witness, parse error,
// wrong script version, insufficient confirmations) just means that input
// doesn't qualify, so scanning continues to the next one.
func (p *Processor) verifyCommitment(tx *wire.MsgTx, currentHeight uint64, candidate runes.Rune) (bool, er.R) {
	commitment := candidate.Commitment()

	for _, in := range tx.TxIn {
		script := tapscriptOf(in.Witness)
		if script == nil {
			continue
		}
		if !witnessPushesCommitment(script, commitment) {
			continue
		}

		ancestorTxid := &in.PreviousOutPoint.Hash
		info, errr := p.rpc.RawTransactionVerbose(ancestorTxid)
		if errr != nil {
			return false, errr
		}
		if info == nil {
			return false, errFatal.New("commitment ancestor transaction not found: "+ancestorTxid.String(), nil)
		}

		vout := in.PreviousOutPoint.Index
		if int(vout) >= len(info.Vout) {
			continue
		}
		if !isTaprootOutput(info.Vout[vout].ScriptPubKey.Hex) {
			continue
		}

		if info.BlockHash == "" {
			continue
		}
		ancestorHash, err := chainhash.NewHashFromStr(info.BlockHash)
		if err != nil {
			continue
		}
		ancestorHeight, errr := p.rpc.BlockHeight(ancestorHash)
		if errr != nil {
			return false, errr
		}
		confirmations := int64(currentHeight) - int64(ancestorHeight) + 1
		if confirmations < 0 {
			return false, errFatal.New("negative confirmations for commitment ancestor", nil)
		}
		if confirmations >= CommitConfirmations {
			return true, nil
		}
	}

	return false, nil
}

// tapscriptOf returns the leaf script of a taproot script-path spend witness,
// or nil if witness doesn't look like one (key-path spend, non-taproot
// input, or too short to contain a script).
func tapscriptOf(witness wire.TxWitness) []byte {
	stack := witness
	if len(stack) >= 2 && len(stack[len(stack)-1]) > 0 && stack[len(stack)-1][0] == 0x50 {
		stack = stack[:len(stack)-1] // drop annex
	}
	if len(stack) < 2 {
		return nil
	}
	return stack[len(stack)-2]
}

// witnessPushesCommitment scans script's push-data instructions for an exact
// match of commitment. Tokenizer errors (malformed scripts) are ignored
// silently rather than propagated, per spec §4.4 step 2.
func witnessPushesCommitment(script, commitment []byte) bool {
	tok := txscript.MakeScriptTokenizer(0, script)
	for tok.Next() {
		if bytes.Equal(tok.Data(), commitment) {
			return true
		}
	}
	return false
}

func isTaprootOutput(scriptHex string) bool {
	raw, err := hex.DecodeString(scriptHex)
	if err != nil {
		return false
	}
	version, program, err := txscript.ExtractWitnessProgramInfo(raw)
	if err != nil {
		return false
	}
	return version == 1 && len(program) == 32
}
