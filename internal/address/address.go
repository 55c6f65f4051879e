package address

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

type Network string

const (
	Mainnet  Network = "mainnet"
	Testnet  Network = "testnet"
	Stagenet Network = "stagenet"
)

type Type int

const (
	Standard Type = iota
	Integrated
	Subaddress
)

const (
	keySize       = 32
	paymentIDSize = 8
	checksumSize  = 4
)

// prefixes holds the network byte of each address type. All of them fit in a single
// varint byte.
var prefixes = map[Network]map[Type]byte{
	Mainnet:  {Standard: 18, Integrated: 19, Subaddress: 42},
	Testnet:  {Standard: 53, Integrated: 54, Subaddress: 63},
	Stagenet: {Standard: 24, Integrated: 25, Subaddress: 36},
}

var (
	ErrEmpty           = errors.New("address is empty")
	ErrEncoding        = errors.New("address is not valid base58")
	ErrLength          = errors.New("address has an invalid length")
	ErrChecksum        = errors.New("address checksum mismatch")
	ErrWrongNetwork    = errors.New("address belongs to another network")
	ErrUnknownNetwork  = errors.New("unknown network")
	ErrUnknownAddrType = errors.New("unknown address prefix")
)

// Address is a decoded Monero public address.
type Address struct {
	Network   Network
	Type      Type
	SpendKey  [keySize]byte
	ViewKey   [keySize]byte
	PaymentID []byte
}

func ParseNetwork(s string) (Network, error) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := prefixes[n]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, s)
	}
	return n, nil
}

// Decode parses and checksums s without checking which network it belongs to.
func Decode(s string) (*Address, error) {
	if s == "" {
		return nil, ErrEmpty
	}
	raw, err := decodeBase58(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if len(raw) < 1+2*keySize+checksumSize {
		return nil, ErrLength
	}

	body, sum := raw[:len(raw)-checksumSize], raw[len(raw)-checksumSize:]
	if !bytes.Equal(crypto.Keccak256(body)[:checksumSize], sum) {
		return nil, ErrChecksum
	}

	network, typ, ok := lookupPrefix(body[0])
	if !ok {
		return nil, ErrUnknownAddrType
	}

	want := 1 + 2*keySize
	if typ == Integrated {
		want += paymentIDSize
	}
	if len(body) != want {
		return nil, ErrLength
	}

	addr := &Address{Network: network, Type: typ}
	copy(addr.SpendKey[:], body[1:1+keySize])
	copy(addr.ViewKey[:], body[1+keySize:1+2*keySize])
	if typ == Integrated {
		addr.PaymentID = append([]byte(nil), body[1+2*keySize:]...)
	}
	return addr, nil
}

// Validate reports whether s is a well formed address for network.
func Validate(s string, network Network) error {
	addr, err := Decode(s)
	if err != nil {
		return err
	}
	if addr.Network != network {
		return fmt.Errorf("%w: got %s, want %s", ErrWrongNetwork, addr.Network, network)
	}
	return nil
}

// Encode renders the address with its network prefix and checksum.
func (a *Address) Encode() (string, error) {
	prefix, ok := prefixes[a.Network][a.Type]
	if !ok {
		return "", ErrUnknownNetwork
	}
	body := make([]byte, 0, 1+2*keySize+paymentIDSize+checksumSize)
	body = append(body, prefix)
	body = append(body, a.SpendKey[:]...)
	body = append(body, a.ViewKey[:]...)
	if a.Type == Integrated {
		if len(a.PaymentID) != paymentIDSize {
			return "", ErrLength
		}
		body = append(body, a.PaymentID...)
	}
	body = append(body, crypto.Keccak256(body)[:checksumSize]...)
	return encodeBase58(body), nil
}

func lookupPrefix(b byte) (Network, Type, bool) {
	for network, types := range prefixes {
		for typ, prefix := range types {
			if prefix == b {
				return network, typ, true
			}
		}
	}
	return "", 0, false
}
