package blockchain

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mr-tron/base58"
)

// AddressLength is the size of Sui addresses and object IDs.
const AddressLength = 32

// Address is a Sui account address or object ID.
type Address [AddressLength]byte

// ParseAddress parses a 0x-prefixed hex address. Short forms such as "0x2"
// are left-padded with zeros.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if raw == "" || len(raw) > 2*AddressLength {
		return a, fmt.Errorf("invalid address %q", s)
	}
	if len(raw)%2 == 1 {
		raw = "0" + raw
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	copy(a[:], common.LeftPadBytes(b, AddressLength))
	return a, nil
}

// MustParseAddress is ParseAddress for constants; it panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the canonical 0x-prefixed, 64-hex-digit form.
func (a Address) String() string {
	return hexutil.Encode(a[:])
}

// NormalizeAddress returns the canonical form of s, or s unchanged when it
// cannot be parsed.
func NormalizeAddress(s string) string {
	a, err := ParseAddress(s)
	if err != nil {
		return s
	}
	return a.String()
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// DigestLength is the size of object and transaction digests.
const DigestLength = 32

// ParseDigest decodes a base58 object or transaction digest.
func ParseDigest(s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	if len(b) != DigestLength {
		return nil, fmt.Errorf("invalid digest %q: got %d bytes, want %d", s, len(b), DigestLength)
	}
	return b, nil
}

// EncodeDigest renders a digest in base58.
func EncodeDigest(b []byte) string {
	return base58.Encode(b)
}
