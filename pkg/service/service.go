package service

import (
	"context"

	"xmr_faucet_back/models"
	"xmr_faucet_back/pkg/repository"
	"xmr_faucet_back/pkg/walletrpc"
)

// Wallet is what the faucet needs from the wallet daemon session.
type Wallet interface {
	Ready() bool
	GetBalance(ctx context.Context, accountIndex uint32) (models.Balance, error)
	RescanSpent(ctx context.Context) error
	Transfer(ctx context.Context, req walletrpc.TransferRequest) (walletrpc.TransferResult, error)
}

type Faucet interface {
	Ready() bool
	GetBalance(ctx context.Context) (models.Balance, error)
	Disburse(ctx context.Context, req models.SendRequest) (models.SendResult, error)
	RecentDisbursements(ctx context.Context, limit int) ([]models.Disbursement, error)
	// Close waits for background work started by earlier sends.
	Close()
}

type Service struct {
	Faucet
}

func NewService(repos *repository.Repository, wallet Wallet, opts FaucetOptions) *Service {
	return &Service{
		Faucet: NewFaucetService(wallet, repos.Journal, opts),
	}
}
