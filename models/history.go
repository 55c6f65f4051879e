package models

type DisbursementView struct {
	ID        int64  `json:"id"`
	Address   string `json:"address"`
	Amount    string `json:"amount"`
	Fee       string `json:"fee"`
	TxHash    string `json:"txHash"`
	Retried   bool   `json:"retried"`
	CreatedAt string `json:"createdAt"`
}

type HistoryResponse struct {
	Disbursements []DisbursementView `json:"disbursements"`
}
