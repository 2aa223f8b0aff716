package blockchain

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// ed25519Flag is the signature scheme flag for Ed25519 keys.
const ed25519Flag byte = 0x00

// bech32KeyPrefix is the human-readable part of exported Sui private keys.
const bech32KeyPrefix = "suiprivkey"

// transactionIntent prefixes transaction bytes before hashing:
// scope TransactionData, version V0, app Sui.
var transactionIntent = []byte{0, 0, 0}

// Signer authorizes transactions on behalf of one address.
type Signer interface {
	Address() Address
	// SignTransaction returns the base64 serialized signature over txBytes.
	SignTransaction(txBytes []byte) (string, error)
}

// Ed25519Signer signs with a local Ed25519 key.
type Ed25519Signer struct {
	key     ed25519.PrivateKey
	address Address
}

// NewEd25519Signer derives a signer from a 32-byte seed.
func NewEd25519Signer(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid ed25519 seed length %d", len(seed))
	}
	key := ed25519.NewKeyFromSeed(seed)
	pub := key.Public().(ed25519.PublicKey)
	return &Ed25519Signer{key: key, address: PublicKeyToAddress(pub)}, nil
}

// ParsePrivateKey accepts the key formats the Sui tooling exports:
// bech32 "suiprivkey1...", base64 keystore entries (flag || seed) and hex seeds.
func ParsePrivateKey(s string) (*Ed25519Signer, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("private key is empty")
	}

	if strings.HasPrefix(strings.ToLower(s), bech32KeyPrefix+"1") {
		hrp, data, err := bech32.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bech32 private key: %w", err)
		}
		if hrp != bech32KeyPrefix {
			return nil, fmt.Errorf("unexpected private key prefix %q", hrp)
		}
		raw, err := bech32.ConvertBits(data, 5, 8, false)
		if err != nil {
			return nil, fmt.Errorf("invalid bech32 private key: %w", err)
		}
		return signerFromFlagged(raw)
	}

	hexKey := strings.TrimPrefix(s, "0x")
	if len(hexKey) == 2*ed25519.SeedSize {
		if seed, err := hex.DecodeString(hexKey); err == nil {
			return NewEd25519Signer(seed)
		}
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		zap.L().Debug("private key is neither bech32, hex nor base64")
		return nil, errors.New("unrecognized private key format")
	}
	if len(raw) == ed25519.SeedSize {
		return NewEd25519Signer(raw)
	}
	return signerFromFlagged(raw)
}

func signerFromFlagged(raw []byte) (*Ed25519Signer, error) {
	if len(raw) != ed25519.SeedSize+1 {
		return nil, fmt.Errorf("invalid private key length %d", len(raw))
	}
	if raw[0] != ed25519Flag {
		return nil, fmt.Errorf("unsupported signature scheme flag 0x%02x, only ed25519 keys are supported", raw[0])
	}
	return NewEd25519Signer(raw[1:])
}

// PublicKeyToAddress derives the Sui address blake2b256(flag || pubkey).
func PublicKeyToAddress(pub ed25519.PublicKey) Address {
	buf := make([]byte, 0, 1+len(pub))
	buf = append(buf, ed25519Flag)
	buf = append(buf, pub...)
	return Address(blake2b.Sum256(buf))
}

func (s *Ed25519Signer) Address() Address {
	return s.address
}

// PublicKey returns the Ed25519 public key.
func (s *Ed25519Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// ExportPrivateKey returns the key in the bech32 "suiprivkey1..." format.
func (s *Ed25519Signer) ExportPrivateKey() (string, error) {
	raw := append([]byte{ed25519Flag}, s.key.Seed()...)
	conv, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(bech32KeyPrefix, conv)
}

// SignTransaction signs blake2b256(intent || txBytes) and returns
// base64(flag || signature || pubkey).
func (s *Ed25519Signer) SignTransaction(txBytes []byte) (string, error) {
	if len(txBytes) == 0 {
		return "", errors.New("nothing to sign")
	}
	msg := make([]byte, 0, len(transactionIntent)+len(txBytes))
	msg = append(msg, transactionIntent...)
	msg = append(msg, txBytes...)
	digest := blake2b.Sum256(msg)

	sig := ed25519.Sign(s.key, digest[:])
	pub := s.PublicKey()

	out := make([]byte, 0, 1+len(sig)+len(pub))
	out = append(out, ed25519Flag)
	out = append(out, sig...)
	out = append(out, pub...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// VerifyTransactionSignature checks a serialized signature produced by
// SignTransaction against txBytes and returns the signer's address.
func VerifyTransactionSignature(txBytes []byte, signature string) (Address, error) {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return Address{}, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(raw) != 1+ed25519.SignatureSize+ed25519.PublicKeySize || raw[0] != ed25519Flag {
		return Address{}, errors.New("invalid ed25519 signature")
	}
	sig := raw[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])

	msg := append(append([]byte(nil), transactionIntent...), txBytes...)
	digest := blake2b.Sum256(msg)
	if !ed25519.Verify(pub, digest[:], sig) {
		return Address{}, errors.New("signature verification failed")
	}
	return PublicKeyToAddress(pub), nil
}
