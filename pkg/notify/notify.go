package notify

import (
	"context"
	"fmt"

	"xmr_faucet_back/models"
	"xmr_faucet_back/pkg/utils"
)

// Notifier tells the faucet operator that the wallet needs a top up.
type Notifier interface {
	NotifyLowBalance(ctx context.Context, balance models.Balance, threshold uint64) error
}

type Nop struct{}

func (Nop) NotifyLowBalance(context.Context, models.Balance, uint64) error { return nil }

// deliver runs send and gives up when ctx is done. Neither mail client accepts a
// context, so an abandoned send finishes in the background.
func deliver(ctx context.Context, send func() error) error {
	done := make(chan error, 1)
	go func() { done <- send() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

const lowBalanceSubject = "Faucet balance is running low"

func lowBalanceBody(balance models.Balance, threshold uint64) string {
	return fmt.Sprintf(`<body style="font-family:Arial,sans-serif;">
  <h2>Faucet balance is running low</h2>
  <table cellpadding="4">
    <tr><td>Unlocked balance:</td><td><b>%s XMR</b></td></tr>
    <tr><td>Total balance:</td><td><b>%s XMR</b></td></tr>
    <tr><td>Alert threshold:</td><td><b>%s XMR</b></td></tr>
  </table>
  <p>Send testnet funds to the faucet wallet. New funds unlock after 10 confirmations.</p>
</body>`, utils.AtomicToXMR(balance.Unlocked), utils.AtomicToXMR(balance.Total), utils.AtomicToXMR(threshold))
}
