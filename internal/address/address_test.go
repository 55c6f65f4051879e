package address

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T, network Network, typ Type) string {
	t.Helper()
	addr := &Address{Network: network, Type: typ}
	for i := range addr.SpendKey {
		addr.SpendKey[i] = byte(i + 1)
		addr.ViewKey[i] = byte(0xff - i)
	}
	if typ == Integrated {
		addr.PaymentID = []byte{0, 0, 0, 0, 0xde, 0xad, 0xbe, 0xef}
	}
	s, err := addr.Encode()
	require.NoError(t, err)
	return s
}

func TestEncodeDecode(t *testing.T) {
	std := testAddress(t, Testnet, Standard)
	assert.Len(t, std, 95)

	decoded, err := Decode(std)
	require.NoError(t, err)
	assert.Equal(t, Testnet, decoded.Network)
	assert.Equal(t, Standard, decoded.Type)
	assert.Equal(t, byte(1), decoded.SpendKey[0])
	assert.Equal(t, byte(0xff), decoded.ViewKey[0])

	integrated := testAddress(t, Testnet, Integrated)
	assert.Len(t, integrated, 106)
	decoded, err = Decode(integrated)
	require.NoError(t, err)
	assert.Equal(t, Integrated, decoded.Type)
	assert.Equal(t, []byte{0, 0, 0, 0, 0xde, 0xad, 0xbe, 0xef}, decoded.PaymentID)

	assert.True(t, strings.HasPrefix(testAddress(t, Mainnet, Standard), "4"))
}

func TestValidate(t *testing.T) {
	badChecksum := func() string {
		body := make([]byte, 1+2*keySize+checksumSize)
		body[0] = prefixes[Testnet][Standard]
		return encodeBase58(body)
	}

	tests := []struct {
		name    string
		input   func() string
		wantErr error
	}{
		{name: "testnet_standard", input: func() string { return testAddress(t, Testnet, Standard) }},
		{name: "testnet_subaddress", input: func() string { return testAddress(t, Testnet, Subaddress) }},
		{name: "testnet_integrated", input: func() string { return testAddress(t, Testnet, Integrated) }},
		{name: "empty", input: func() string { return "" }, wantErr: ErrEmpty},
		{name: "mainnet_on_testnet", input: func() string { return testAddress(t, Mainnet, Standard) }, wantErr: ErrWrongNetwork},
		{name: "stagenet_on_testnet", input: func() string { return testAddress(t, Stagenet, Subaddress) }, wantErr: ErrWrongNetwork},
		{name: "bad_checksum", input: badChecksum, wantErr: ErrChecksum},
		{name: "truncated", input: func() string { return testAddress(t, Testnet, Standard)[:92] }, wantErr: ErrEncoding},
		{name: "invalid_characters", input: func() string { return strings.Repeat("0", 95) }, wantErr: ErrEncoding},
		{name: "too_short", input: func() string { return "9" + strings.Repeat("1", 10) }, wantErr: ErrLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input(), Testnet)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork(" TestNet ")
	require.NoError(t, err)
	assert.Equal(t, Testnet, n)

	_, err = ParseNetwork("regtest")
	assert.True(t, errors.Is(err, ErrUnknownNetwork))
}
