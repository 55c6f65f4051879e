package notify

import (
	"context"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"xmr_faucet_back/models"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPNotifier struct {
	dialer dialer
	from   string
	to     string
}

func NewSMTPNotifier(host string, port int, username, password, from, to string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		to:     to,
	}
}

func (n *SMTPNotifier) NotifyLowBalance(ctx context.Context, balance models.Balance, threshold uint64) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", lowBalanceSubject)
	m.SetBody("text/html", lowBalanceBody(balance, threshold))

	err := deliver(ctx, func() error { return n.dialer.DialAndSend(m) })
	return errors.Wrap(err, "smtp send")
}
