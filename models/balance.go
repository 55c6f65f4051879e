package models

// Balance holds wallet funds in atomic units (piconero).
type Balance struct {
	Total    uint64
	Unlocked uint64
}

// Locked is the part of the balance still waiting for confirmations.
func (b Balance) Locked() uint64 {
	if b.Unlocked > b.Total {
		return 0
	}
	return b.Total - b.Unlocked
}

type BalanceResponse struct {
	Balance         string `json:"balance"`
	UnlockedBalance string `json:"unlockedBalance"`
}
