package rpc

import (
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/stretchr/testify/require"
)

func TestIsAbsentMatchesNotFoundCode(t *testing.T) {
	err := &btcjson.RPCError{Code: notFoundCode, Message: "Block not found"}
	require.True(t, isAbsent(err))
}

func TestIsAbsentMatchesNotFoundMessageRegardlessOfCode(t *testing.T) {
	err := &btcjson.RPCError{Code: btcjson.ErrRPCInternal, Message: "Transaction NOT FOUND"}
	require.True(t, isAbsent(err))
}

func TestIsAbsentRejectsOtherCodesAndMessages(t *testing.T) {
	err := &btcjson.RPCError{Code: btcjson.ErrRPCInternal, Message: "internal error"}
	require.False(t, isAbsent(err))
}

func TestIsAbsentNilIsFalse(t *testing.T) {
	require.False(t, isAbsent(nil))
}

func TestIsAbsentWrappedError(t *testing.T) {
	inner := &btcjson.RPCError{Code: notFoundCode, Message: "absent"}
	wrapped := errors.Join(errors.New("context"), inner)
	require.True(t, isAbsent(wrapped))
}

func TestIsAbsentPlainErrorWithNotFoundMessage(t *testing.T) {
	require.True(t, isAbsent(errors.New("rpc: transaction not found in index")))
}
