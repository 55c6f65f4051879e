package walletrpc

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Session is the process wide handle to one opened wallet file. It is opened once at
// startup and closed once at shutdown; every request shares it.
type Session struct {
	*Client

	walletFile     string
	walletPassword string

	mu   sync.RWMutex
	open bool
}

func NewSession(client *Client, walletFile, walletPassword string) *Session {
	return &Session{
		Client:         client,
		walletFile:     walletFile,
		walletPassword: walletPassword,
	}
}

func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return nil
	}
	if err := s.OpenWallet(ctx, s.walletFile, s.walletPassword); err != nil {
		return errors.Wrapf(err, "open wallet %s", s.walletFile)
	}
	s.open = true
	logrus.WithField("wallet", s.walletFile).Info("wallet session opened")
	return nil
}

func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Close releases the wallet on the daemon. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	s.open = false
	if err := s.CloseWallet(ctx); err != nil {
		return errors.Wrapf(err, "close wallet %s", s.walletFile)
	}
	logrus.WithField("wallet", s.walletFile).Info("wallet session closed")
	return nil
}
