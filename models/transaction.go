package models

import "time"

// Disbursement is one relayed faucet payout as stored in the journal.
type Disbursement struct {
	ID        int64     `db:"id" json:"id"`
	Address   string    `db:"address" json:"address"`
	Amount    uint64    `db:"amount" json:"amount"` // piconero
	Fee       uint64    `db:"fee" json:"fee"`
	TxHash    string    `db:"tx_hash" json:"txHash"`
	Retried   bool      `db:"retried" json:"retried"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type SendRequest struct {
	Address string  `json:"address"`
	Amount  *string `json:"amount,omitempty"` // XMR, defaults to the drip amount
}

type SendResult struct {
	TxHash  string
	Amount  uint64
	Fee     uint64
	Address string
	Retried bool
}

type SendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TxHash  string `json:"txHash"`
}
