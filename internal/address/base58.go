package address

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Monero base58 works on 8 byte blocks, each encoded to a fixed width of 11 characters.
// A trailing partial block of n bytes is encoded to encodedBlockSizes[n] characters.
const (
	fullBlockSize        = 8
	fullEncodedBlockSize = 11
)

var encodedBlockSizes = [...]int{0, 2, 3, 5, 6, 7, 9, 10, 11}

var errBadBlock = errors.New("invalid base58 block")

func decodedBlockSize(encodedSize int) int {
	for n, size := range encodedBlockSizes {
		if size == encodedSize {
			return n
		}
	}
	return -1
}

func decodeBase58(s string) ([]byte, error) {
	full := len(s) / fullEncodedBlockSize
	lastSize := decodedBlockSize(len(s) % fullEncodedBlockSize)
	if lastSize < 0 {
		return nil, fmt.Errorf("invalid encoded length %d", len(s))
	}

	out := make([]byte, 0, full*fullBlockSize+lastSize)
	for i := 0; i < full; i++ {
		block, err := decodeBlock(s[i*fullEncodedBlockSize:(i+1)*fullEncodedBlockSize], fullBlockSize)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
	if lastSize > 0 {
		block, err := decodeBlock(s[full*fullEncodedBlockSize:], lastSize)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
	return out, nil
}

// decodeBlock decodes one fixed width block. mr-tron/base58 maps each leading '1' to a
// zero byte, so the result is normalized by dropping leading zeros and left padding.
func decodeBlock(block string, size int) ([]byte, error) {
	raw, err := base58.Decode(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBlock, err)
	}
	raw = bytes.TrimLeft(raw, "\x00")
	if len(raw) > size {
		return nil, errBadBlock
	}
	out := make([]byte, size)
	copy(out[size-len(raw):], raw)
	return out, nil
}

func encodeBase58(data []byte) string {
	var sb strings.Builder
	for len(data) > 0 {
		n := fullBlockSize
		if len(data) < n {
			n = len(data)
		}
		sb.WriteString(encodeBlock(data[:n]))
		data = data[n:]
	}
	return sb.String()
}

func encodeBlock(block []byte) string {
	digits := strings.TrimLeft(base58.Encode(block), "1")
	width := encodedBlockSizes[len(block)]
	return strings.Repeat("1", width-len(digits)) + digits
}
