package service

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrSessionNotReady           = errors.New("wallet session is not ready")
	ErrInvalidAddress            = errors.New("invalid address")
	ErrInvalidAmount             = errors.New("invalid amount")
	ErrInsufficientUnlockedFunds = errors.New("insufficient unlocked funds")
	ErrDoubleSpend               = errors.New("double spend")
	ErrTransactionFailed         = errors.New("transaction failed")
)

// TransferError is a failed transfer that the caller cannot fix. It matches
// ErrTransactionFailed, and ErrDoubleSpend when the final attempt hit a double spend.
type TransferError struct {
	Err         error
	Retried     bool
	DoubleSpend bool
}

func (e *TransferError) Error() string {
	if e.Retried {
		return fmt.Sprintf("transaction failed after rescan and retry: %v", e.Err)
	}
	return fmt.Sprintf("transaction failed: %v", e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

func (e *TransferError) Is(target error) bool {
	return target == ErrTransactionFailed || (e.DoubleSpend && target == ErrDoubleSpend)
}
