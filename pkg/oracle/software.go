package oracle

import (
	"context"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Software is a local implementation of the ecrecover primitive.
//
// It behaves like the conventional primitive: any recovery failure yields
// the all-zero address rather than an error. Only calls to the configured
// address are served.
type Software struct {
	address common.Address
}

// NewSoftware creates a software primitive served at the ecrecover precompile address.
func NewSoftware() *Software {
	return &Software{address: EcrecoverAddress}
}

// WithAddress sets the address the primitive answers on.
func (p *Software) WithAddress(address common.Address) *Software {
	p.address = address
	return p
}

// Call implements Caller. Short input is right-padded with zeros.
func (p *Software) Call(ctx context.Context, to common.Address, input []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if to != p.address {
		return nil, fmt.Errorf("no recovery service at %s", to.Hex())
	}

	padded := make([]byte, InputLength)
	copy(padded, input)

	out := make([]byte, common.HashLength)
	addr, ok := recoverAddress(padded)
	if ok {
		copy(out[common.HashLength-common.AddressLength:], addr[:])
	}
	return out, nil
}

func recoverAddress(input []byte) (common.Address, bool) {
	// v occupies a full word; anything above the low byte must be zero.
	for _, b := range input[32:63] {
		if b != 0 {
			return common.Address{}, false
		}
	}
	v := input[63]
	if v != 27 && v != 28 {
		return common.Address{}, false
	}

	// Compact form expected by decred: header byte then r || s.
	sig := make([]byte, 65)
	sig[0] = v
	copy(sig[1:], input[64:128])

	pub, _, err := ecdsa.RecoverCompact(sig, input[0:32])
	if err != nil {
		return common.Address{}, false
	}

	h := sha3.NewLegacyKeccak256()
	h.Write(pub.SerializeUncompressed()[1:])
	return common.BytesToAddress(h.Sum(nil)[12:]), true
}
