package utils

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// XMRDecimals is the number of fractional digits of one XMR in piconero.
const XMRDecimals = 12

var (
	ErrAmountFormat    = errors.New("amount is not a decimal number")
	ErrAmountNegative  = errors.New("amount must be positive")
	ErrAmountPrecision = errors.New("amount has more than 12 fractional digits")
	ErrAmountOverflow  = errors.New("amount is too large")
)

// AtomicToXMR renders piconero as an XMR decimal string with all 12 fractional digits.
func AtomicToXMR(atomic uint64) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(atomic), -XMRDecimals)
	return d.StringFixed(XMRDecimals)
}

// XMRToAtomic converts an XMR decimal string to piconero. The conversion is exact:
// inputs that cannot be represented as a whole number of piconero are rejected.
func XMRToAtomic(xmr string) (uint64, error) {
	d, err := decimal.NewFromString(xmr)
	if err != nil {
		return 0, errors.Wrapf(ErrAmountFormat, "%q", xmr)
	}
	if d.IsNegative() {
		return 0, ErrAmountNegative
	}

	atomic := d.Shift(XMRDecimals)
	if !atomic.IsInteger() {
		return 0, ErrAmountPrecision
	}

	n := atomic.BigInt()
	if !n.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return n.Uint64(), nil
}

// FormatXMR renders piconero as the shortest exact XMR decimal, e.g. "1" or "0.25".
func FormatXMR(atomic uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(atomic), -XMRDecimals).String()
}
