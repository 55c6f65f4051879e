package notify

import (
	"context"

	"github.com/mailjet/mailjet-apiv3-go/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"xmr_faucet_back/models"
)

type mailjetSender interface {
	Send(messages *mailjet.MessagesV31) (*mailjet.ResultsV31, error)
}

type mailjetClient struct {
	client *mailjet.Client
}

func (c mailjetClient) Send(messages *mailjet.MessagesV31) (*mailjet.ResultsV31, error) {
	return c.client.SendMailV31(messages)
}

type MailjetNotifier struct {
	sender mailjetSender
	from   string
	to     string
}

func NewMailjetNotifier(apiKey, secretKey, from, to string) *MailjetNotifier {
	return &MailjetNotifier{
		sender: mailjetClient{client: mailjet.NewMailjetClient(apiKey, secretKey)},
		from:   from,
		to:     to,
	}
}

func (n *MailjetNotifier) NotifyLowBalance(ctx context.Context, balance models.Balance, threshold uint64) error {
	messagesInfo := []mailjet.InfoMessagesV31{
		{
			From: &mailjet.RecipientV31{
				Email: n.from,
				Name:  "XMR Faucet",
			},
			To: &mailjet.RecipientsV31{
				{
					Email: n.to,
				},
			},
			Subject:  lowBalanceSubject,
			HTMLPart: lowBalanceBody(balance, threshold),
		},
	}

	err := deliver(ctx, func() error {
		res, err := n.sender.Send(&mailjet.MessagesV31{Info: messagesInfo})
		if err != nil {
			return err
		}
		logrus.Debugf("mailjet response: %+v", res)
		return nil
	})
	return errors.Wrap(err, "mailjet send")
}
