package walletrpc

import (
	"encoding/json"
	"fmt"
)

// Priority is the fee priority understood by monero-wallet-rpc.
type Priority uint32

const (
	PriorityDefault Priority = iota
	PriorityUnimportant
	PriorityNormal
	PriorityElevated
	PriorityHighest
)

type request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is an error object returned by the wallet daemon.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wallet rpc error %d: %s", e.Code, e.Message)
}

type Destination struct {
	Amount  uint64 `json:"amount"`
	Address string `json:"address"`
}

type TransferRequest struct {
	Destinations []Destination `json:"destinations"`
	AccountIndex uint32        `json:"account_index"`
	Priority     Priority      `json:"priority"`
	GetTxKey     bool          `json:"get_tx_key"`
	DoNotRelay   bool          `json:"do_not_relay"`
}

type TransferResult struct {
	Amount uint64 `json:"amount"`
	Fee    uint64 `json:"fee"`
	TxHash string `json:"tx_hash"`
	TxKey  string `json:"tx_key"`
}

type openWalletParams struct {
	Filename string `json:"filename"`
	Password string `json:"password"`
}

type closeWalletParams struct {
	AutosaveCurrent bool `json:"autosave_current"`
}

type getBalanceParams struct {
	AccountIndex uint32 `json:"account_index"`
}

type getBalanceResult struct {
	Balance         uint64 `json:"balance"`
	UnlockedBalance uint64 `json:"unlocked_balance"`
	BlocksToUnlock  uint64 `json:"blocks_to_unlock"`
}
