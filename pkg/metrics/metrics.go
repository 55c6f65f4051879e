package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"xmr_faucet_back/models"
)

const (
	OutcomeSuccess      = "success"
	OutcomeInvalid      = "invalid"
	OutcomeInsufficient = "insufficient_funds"
	OutcomeNotReady     = "not_ready"
	OutcomeFailed       = "failed"
)

// Metrics is safe to use as a nil pointer, which records nothing.
type Metrics struct {
	disbursements   *prometheus.CounterVec
	doubleSpends    *prometheus.CounterVec
	sentAtomic      prometheus.Counter
	balanceAtomic   *prometheus.GaugeVec
	transferSeconds prometheus.Histogram
}

// New creates the faucet metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		disbursements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xmr_faucet",
			Name:      "disbursements_total",
			Help:      "Faucet send requests by outcome",
		}, []string{"outcome"}),
		doubleSpends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xmr_faucet",
			Name:      "double_spend_retries_total",
			Help:      "Transfers retried after a rescan of spent outputs, by retry result",
		}, []string{"result"}),
		sentAtomic: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "xmr_faucet",
			Name:      "sent_piconero_total",
			Help:      "Amount sent by the faucet in piconero",
		}),
		balanceAtomic: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "xmr_faucet",
			Name:      "wallet_balance_piconero",
			Help:      "Last observed faucet wallet balance in piconero",
		}, []string{"kind"}),
		transferSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "xmr_faucet",
			Name:      "transfer_duration_seconds",
			Help:      "Time spent building and relaying a transfer, retries included",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
	}
	reg.MustRegister(m.disbursements, m.doubleSpends, m.sentAtomic, m.balanceAtomic, m.transferSeconds)
	return m
}

func (m *Metrics) Disbursement(outcome string) {
	if m == nil {
		return
	}
	m.disbursements.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Sent(atomic uint64) {
	if m == nil {
		return
	}
	m.sentAtomic.Add(float64(atomic))
}

func (m *Metrics) DoubleSpendRetry(succeeded bool) {
	if m == nil {
		return
	}
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	m.doubleSpends.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveBalance(b models.Balance) {
	if m == nil {
		return
	}
	m.balanceAtomic.WithLabelValues("total").Set(float64(b.Total))
	m.balanceAtomic.WithLabelValues("unlocked").Set(float64(b.Unlocked))
	m.balanceAtomic.WithLabelValues("locked").Set(float64(b.Locked()))
}

func (m *Metrics) ObserveTransfer(seconds float64) {
	if m == nil {
		return
	}
	m.transferSeconds.Observe(seconds)
}
