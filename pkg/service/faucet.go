package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"xmr_faucet_back/internal/address"
	"xmr_faucet_back/models"
	"xmr_faucet_back/pkg/cache"
	"xmr_faucet_back/pkg/metrics"
	"xmr_faucet_back/pkg/notify"
	"xmr_faucet_back/pkg/repository"
	"xmr_faucet_back/pkg/utils"
	"xmr_faucet_back/pkg/walletrpc"
)

const (
	// AccountIndex is the wallet account every payout is sent from.
	AccountIndex uint32 = 0
	// TransferPriority is the fee priority used for payouts.
	TransferPriority = walletrpc.PriorityNormal
	// DefaultDripAmount is sent when a request does not name an amount (XMR).
	DefaultDripAmount = "1"

	alertTimeout = 30 * time.Second
)

type FaucetOptions struct {
	Network             address.Network
	DripAmount          string
	BalanceCacheTTL     time.Duration
	LowBalanceThreshold uint64 // piconero, 0 disables alerts
	Notifier            notify.Notifier
	Metrics             *metrics.Metrics
}

// FaucetService decides whether a payout may go out and sends it. Sends are
// serialized: the wallet has one set of spendable outputs, so the funds check and
// the transfer that consumes them must not interleave with another send.
type FaucetService struct {
	wallet   Wallet
	journal  repository.Journal
	cache    *cache.BalanceCache
	notifier notify.Notifier
	metrics  *metrics.Metrics

	network             address.Network
	dripAmount          string
	lowBalanceThreshold uint64

	sendMu sync.Mutex

	alertMu           sync.Mutex
	lowBalanceAlerted bool
	alerts            sync.WaitGroup
}

func NewFaucetService(wallet Wallet, journal repository.Journal, opts FaucetOptions) *FaucetService {
	if opts.Network == "" {
		opts.Network = address.Testnet
	}
	if opts.DripAmount == "" {
		opts.DripAmount = DefaultDripAmount
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	return &FaucetService{
		wallet:              wallet,
		journal:             journal,
		cache:               cache.NewBalanceCache(opts.BalanceCacheTTL),
		notifier:            opts.Notifier,
		metrics:             opts.Metrics,
		network:             opts.Network,
		dripAmount:          opts.DripAmount,
		lowBalanceThreshold: opts.LowBalanceThreshold,
	}
}

func (s *FaucetService) Ready() bool {
	return s.wallet.Ready()
}

// GetBalance returns the wallet balance, possibly a few seconds stale.
func (s *FaucetService) GetBalance(ctx context.Context) (models.Balance, error) {
	if !s.wallet.Ready() {
		return models.Balance{}, ErrSessionNotReady
	}
	if b, ok := s.cache.GetCachedBalance(); ok {
		return b, nil
	}

	gen := s.cache.Generation()
	b, err := s.wallet.GetBalance(ctx, AccountIndex)
	if err != nil {
		return models.Balance{}, errors.Wrap(err, "get balance")
	}
	s.cache.SetCachedBalance(b, gen)
	s.metrics.ObserveBalance(b)
	s.rearmLowBalanceAlert(b)
	return b, nil
}

// Disburse validates req and relays one payout. Every successful call broadcasts
// a new transaction, so it must not be repeated to "retry" a request.
func (s *FaucetService) Disburse(ctx context.Context, req models.SendRequest) (models.SendResult, error) {
	res, err := s.disburse(ctx, req)
	s.metrics.Disbursement(outcome(err))
	return res, err
}

func (s *FaucetService) disburse(ctx context.Context, req models.SendRequest) (models.SendResult, error) {
	if !s.wallet.Ready() {
		return models.SendResult{}, ErrSessionNotReady
	}

	dest := strings.TrimSpace(req.Address)
	if dest == "" {
		return models.SendResult{}, errors.Wrap(ErrInvalidAddress, "address is required")
	}
	if err := address.Validate(dest, s.network); err != nil {
		return models.SendResult{}, errors.Wrap(ErrInvalidAddress, err.Error())
	}

	amountXMR := s.dripAmount
	if req.Amount != nil && strings.TrimSpace(*req.Amount) != "" {
		amountXMR = strings.TrimSpace(*req.Amount)
	}
	amount, err := utils.XMRToAtomic(amountXMR)
	if err != nil {
		return models.SendResult{}, errors.Wrap(ErrInvalidAmount, err.Error())
	}
	if amount == 0 {
		return models.SendResult{}, errors.Wrap(ErrInvalidAmount, "amount must be greater than zero")
	}

	log := logrus.WithFields(logrus.Fields{
		"address": dest,
		"amount":  amountXMR,
	})

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	bal, err := s.wallet.GetBalance(ctx, AccountIndex)
	if err != nil {
		return models.SendResult{}, errors.Wrap(err, "check unlocked balance")
	}
	s.metrics.ObserveBalance(bal)
	if bal.Unlocked < amount {
		log.WithField("unlocked", utils.AtomicToXMR(bal.Unlocked)).
			Warn("faucet has insufficient unlocked funds, recently received funds may still be waiting for 10 confirmations")
		return models.SendResult{}, errors.Wrapf(ErrInsufficientUnlockedFunds,
			"unlocked %s XMR, requested %s XMR", utils.AtomicToXMR(bal.Unlocked), utils.AtomicToXMR(amount))
	}

	start := time.Now()
	tx, retried, err := s.transfer(ctx, log, walletrpc.TransferRequest{
		Destinations: []walletrpc.Destination{{Amount: amount, Address: dest}},
		AccountIndex: AccountIndex,
		Priority:     TransferPriority,
	})
	s.metrics.ObserveTransfer(time.Since(start).Seconds())
	if err != nil {
		log.WithError(err).WithField("retried", retried).Error("faucet transfer failed")
		return models.SendResult{}, classifyTransferError(err, retried)
	}

	s.cache.Invalidate()

	sent := tx.Amount
	if sent == 0 {
		sent = amount
	}
	result := models.SendResult{
		TxHash:  tx.TxHash,
		Amount:  sent,
		Fee:     tx.Fee,
		Address: dest,
		Retried: retried,
	}
	log.WithFields(logrus.Fields{
		"tx_hash": tx.TxHash,
		"fee":     utils.AtomicToXMR(tx.Fee),
		"retried": retried,
	}).Infof("sent %s XMR to %s", amountXMR, dest)

	s.record(ctx, result)
	s.metrics.Sent(sent)
	s.checkLowBalance(models.Balance{
		Total:    saturatingSub(bal.Total, sent+tx.Fee),
		Unlocked: saturatingSub(bal.Unlocked, sent+tx.Fee),
	})
	return result, nil
}

// transfer sends req once. If the wallet rejects it as a double spend, the wallet's
// spent output set is stale: rescan it and send the same request exactly one more time.
func (s *FaucetService) transfer(ctx context.Context, log *logrus.Entry, req walletrpc.TransferRequest) (walletrpc.TransferResult, bool, error) {
	tx, err := s.wallet.Transfer(ctx, req)
	if err == nil || !walletrpc.IsDoubleSpend(err) {
		return tx, false, err
	}

	log.WithError(err).Warn("double spend detected, rescanning spent outputs")
	if err := s.wallet.RescanSpent(ctx); err != nil {
		return walletrpc.TransferResult{}, false, errors.Wrap(err, "rescan spent outputs")
	}

	tx, err = s.wallet.Transfer(ctx, req)
	s.metrics.DoubleSpendRetry(err == nil)
	return tx, true, err
}

func classifyTransferError(err error, retried bool) error {
	if !retried {
		switch {
		case walletrpc.IsWrongAddress(err):
			return errors.Wrap(ErrInvalidAddress, err.Error())
		case walletrpc.IsNotEnoughMoney(err):
			return errors.Wrap(ErrInsufficientUnlockedFunds, err.Error())
		case walletrpc.IsNotOpen(err):
			return errors.Wrap(ErrSessionNotReady, err.Error())
		}
	}
	return &TransferError{Err: err, Retried: retried, DoubleSpend: walletrpc.IsDoubleSpend(err)}
}

func (s *FaucetService) record(ctx context.Context, res models.SendResult) {
	_, err := s.journal.CreateDisbursement(ctx, models.Disbursement{
		Address: res.Address,
		Amount:  res.Amount,
		Fee:     res.Fee,
		TxHash:  res.TxHash,
		Retried: res.Retried,
	})
	if err != nil {
		logrus.WithError(err).WithField("tx_hash", res.TxHash).Error("failed to record disbursement")
	}
}

func (s *FaucetService) RecentDisbursements(ctx context.Context, limit int) ([]models.Disbursement, error) {
	return s.journal.RecentDisbursements(ctx, limit)
}

// Close blocks until pending low balance alerts are delivered or time out.
func (s *FaucetService) Close() {
	s.alerts.Wait()
}

func (s *FaucetService) checkLowBalance(b models.Balance) {
	if s.lowBalanceThreshold == 0 || b.Unlocked >= s.lowBalanceThreshold {
		return
	}

	s.alertMu.Lock()
	if s.lowBalanceAlerted {
		s.alertMu.Unlock()
		return
	}
	s.lowBalanceAlerted = true
	s.alertMu.Unlock()

	s.alerts.Add(1)
	go func() {
		defer s.alerts.Done()
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()
		if err := s.notifier.NotifyLowBalance(ctx, b, s.lowBalanceThreshold); err != nil {
			logrus.WithError(err).Error("failed to send low balance alert")
			s.rearm()
			return
		}
		logrus.WithField("unlocked", utils.AtomicToXMR(b.Unlocked)).Warn("low balance alert sent")
	}()
}

// rearmLowBalanceAlert allows a new alert once the wallet has been topped up.
func (s *FaucetService) rearmLowBalanceAlert(b models.Balance) {
	if s.lowBalanceThreshold == 0 || b.Unlocked < s.lowBalanceThreshold {
		return
	}
	s.rearm()
}

func (s *FaucetService) rearm() {
	s.alertMu.Lock()
	s.lowBalanceAlerted = false
	s.alertMu.Unlock()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrSessionNotReady):
		return metrics.OutcomeNotReady
	case errors.Is(err, ErrInvalidAddress), errors.Is(err, ErrInvalidAmount):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrInsufficientUnlockedFunds):
		return metrics.OutcomeInsufficient
	default:
		return metrics.OutcomeFailed
	}
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
