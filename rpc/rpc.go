// Package rpc is the thin façade the indexer talks to Bitcoin Core through
// (spec §4.1, C4/C9). It wraps github.com/btcsuite/btcd/rpcclient the way
// the retrieved full node wraps its own RPC client (rpcclient/rawtransactions.go,
// rpcclient/chain.go): every call returns an er.R instead of a bare error,
// and "the thing doesn't exist" is folded into a nil return rather than
// surfaced as an error, per spec §7's absence-is-not-an-error contract.
package rpc

import (
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient/v8"
	"github.com/btcsuite/btcd/wire"

	"github.com/btcrunes/runeindexer/internal/er"
)

// ErrType classifies faults this package originates itself (as opposed to
// errors it passes through from rpcclient).
var ErrType = er.NewErrorType("rpc.Err")

var errConnect = ErrType.Code("errConnect")

// notFoundCode is the JSON-RPC error code spec §6 specifies for "the
// requested item isn't known to the node": getrawtransaction, getblock, and
// getblockheader all use it for a missing txid/hash.
const notFoundCode = -8

// Config is the subset of rpcclient.ConnConfig the indexer exposes; it is
// deliberately narrower than the upstream struct since this indexer never
// authenticates with anything but user/pass over HTTP(S).
type Config struct {
	Host string
	User string
	Pass string
	TLS  bool
}

// Client is a connected Bitcoin Core RPC client.
type Client struct {
	rc *rpcclient.Client
}

// Dial connects to Bitcoin Core. The indexer only ever polls (GetBlockCount,
// GetBlockHash, GetBlock, GetBlockHeader, GetBlockHeaderVerbose,
// GetRawTransactionVerbose), so it runs the client in
// HTTP POST mode with no notification handlers, same as the retrieved full
// node's non-websocket rpcclient callers.
func Dial(cfg Config) (*Client, er.R) {
	connCfg := &rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		HTTPPostMode: true,
		DisableTLS:   !cfg.TLS,
	}
	rc, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, errConnect.New("dial bitcoind", err)
	}
	log.Infof("connected to bitcoind at %s", cfg.Host)
	return &Client{rc: rc}, nil
}

// Shutdown closes the underlying connection.
func (c *Client) Shutdown() {
	c.rc.Shutdown()
}

// BlockCount returns the node's current best height.
func (c *Client) BlockCount() (int64, er.R) {
	n, err := c.rc.GetBlockCount()
	if err != nil {
		return 0, er.E(err)
	}
	return n, nil
}

// BlockHash returns the hash of the block at height, or nil if the node
// doesn't have a block at that height yet.
func (c *Client) BlockHash(height int64) (*chainhash.Hash, er.R) {
	h, err := c.rc.GetBlockHash(height)
	if isAbsent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, er.E(err)
	}
	return h, nil
}

// Block returns the full deserialized block, including every transaction,
// or nil if hash is unknown to the node.
func (c *Client) Block(hash *chainhash.Hash) (*wire.MsgBlock, er.R) {
	b, err := c.rc.GetBlock(hash)
	if isAbsent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, er.E(err)
	}
	return b, nil
}

// BlockHeaderTime returns the block's header timestamp in Unix seconds.
func (c *Client) BlockHeaderTime(hash *chainhash.Hash) (int64, er.R) {
	h, err := c.rc.GetBlockHeader(hash)
	if err != nil {
		return 0, er.E(err)
	}
	return h.Timestamp.Unix(), nil
}

// BlockHeight returns the height of the block identified by hash.
func (c *Client) BlockHeight(hash *chainhash.Hash) (int32, er.R) {
	h, err := c.rc.GetBlockHeaderVerbose(hash)
	if err != nil {
		return 0, er.E(err)
	}
	return h.Height, nil
}

// RawTransactionVerbose fetches a transaction along with its confirmation
// count and per-output script metadata. It returns (nil, nil) when the node
// has no record of txid at all (pruned, never relayed, or simply unknown);
// the commitment verifier (C4) turns that absence into a fatal error.
func (c *Client) RawTransactionVerbose(txid *chainhash.Hash) (*btcjson.TxRawResult, er.R) {
	res, err := c.rc.GetRawTransactionVerbose(txid)
	if isAbsent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, er.E(err)
	}
	return res, nil
}

// isAbsent reports whether err is Bitcoin Core's "no such tx/block" RPC
// fault as opposed to a real connectivity or protocol fault. Per spec §6,
// this is code -8, or any error whose message mentions "not found"; only
// these are folded into absence, anything else is Fatal and aborts block
// processing.
func isAbsent(err error) bool {
	if err == nil {
		return false
	}
	var rpcErr *btcjson.RPCError
	if errors.As(err, &rpcErr) {
		if rpcErr.Code == notFoundCode {
			return true
		}
		return strings.Contains(strings.ToLower(rpcErr.Message), "not found")
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
