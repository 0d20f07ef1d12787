package ecrecover

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of a compact signature: r || s || v.
const SignatureLength = 65

// Secp256k1N is the order of the secp256k1 group.
var Secp256k1N, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

// Secp256k1HalfN is floor(N / 2), the largest accepted s value.
var Secp256k1HalfN = new(big.Int).Rsh(Secp256k1N, 1)

// Signature is an ECDSA signature with its recovery identifier.
type Signature struct {
	V uint8       // Recovery identifier (27 or 28)
	R common.Hash // r component, big-endian
	S common.Hash // s component, big-endian
}

// ParseCompactSignature splits a 65-byte r || s || v signature.
// The v byte is kept as is; raw recovery ids 0 and 1 are not shifted to 27 and 28.
func ParseCompactSignature(sig []byte) (Signature, error) {
	if len(sig) != SignatureLength {
		return Signature{}, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(sig))
	}
	return Signature{
		V: sig[64],
		R: common.BytesToHash(sig[0:32]),
		S: common.BytesToHash(sig[32:64]),
	}, nil
}

// Bytes encodes the signature as r || s || v.
func (sig Signature) Bytes() []byte {
	out := make([]byte, SignatureLength)
	copy(out[0:32], sig.R[:])
	copy(out[32:64], sig.S[:])
	out[64] = sig.V
	return out
}

// IsLowS reports whether s lies in the lower half of the group order.
func (sig Signature) IsLowS() bool {
	return isLowS(sig.S)
}

func isLowS(s common.Hash) bool {
	return new(big.Int).SetBytes(s[:]).Cmp(Secp256k1HalfN) <= 0
}

// ParseWord parses a 32-byte big-endian word from a hex string.
// The 0x prefix is optional and shorter values are left-padded.
func ParseWord(s string) (common.Hash, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if s == "" {
		return common.Hash{}, errors.New("empty value")
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) > common.HashLength {
		return common.Hash{}, fmt.Errorf("value is %d bytes, want at most %d", len(b), common.HashLength)
	}
	return common.BytesToHash(b), nil
}

// HashMessage returns the Keccak-256 digest of message.
func HashMessage(message []byte) common.Hash {
	return crypto.Keccak256Hash(message)
}
