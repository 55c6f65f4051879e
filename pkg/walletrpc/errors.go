package walletrpc

import (
	"strings"

	"github.com/pkg/errors"
)

// Error codes from monero-wallet-rpc (wallet_rpc_server_error_codes.h).
const (
	CodeUnknown        = -1
	CodeWrongAddress   = -2
	CodeDaemonBusy     = -3
	CodeTransferError  = -4
	CodeNotOpen        = -13
	CodeNotEnoughMoney = -17
)

func asRPCError(err error) (*RPCError, bool) {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr, true
	}
	return nil, false
}

func messageContains(rpcErr *RPCError, needles ...string) bool {
	msg := strings.ToLower(rpcErr.Message)
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}

// IsDoubleSpend reports whether a transfer was rejected because it spends outputs the
// wallet has not yet marked as spent.
func IsDoubleSpend(err error) bool {
	rpcErr, ok := asRPCError(err)
	if !ok {
		return false
	}
	return messageContains(rpcErr, "double spend", "double_spend", "key image already spent", "already spent")
}

func IsWrongAddress(err error) bool {
	rpcErr, ok := asRPCError(err)
	if !ok {
		return false
	}
	return rpcErr.Code == CodeWrongAddress || messageContains(rpcErr, "invalid destination address")
}

func IsNotEnoughMoney(err error) bool {
	rpcErr, ok := asRPCError(err)
	if !ok {
		return false
	}
	return rpcErr.Code == CodeNotEnoughMoney || messageContains(rpcErr, "not enough money", "not enough unlocked money")
}

func IsNotOpen(err error) bool {
	rpcErr, ok := asRPCError(err)
	return ok && rpcErr.Code == CodeNotOpen
}
