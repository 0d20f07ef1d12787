package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// InputLength is the size of an ecrecover call payload: digest, v, r and s as 32-byte words.
const InputLength = 128

// EcrecoverAddress is the well-known address of the ecrecover precompile.
var EcrecoverAddress = common.BytesToAddress([]byte{0x01})

// ErrCallFailed is returned when the external call fails or returns malformed data.
var ErrCallFailed = errors.New("oracle: ecrecover call failed")

// Caller performs a read-only external call on behalf of the client.
// It is the capability the host grants for reaching the recovery service.
type Caller interface {
	Call(ctx context.Context, to common.Address, input []byte) ([]byte, error)
}

// Client invokes the ecrecover primitive through a Caller and turns the
// raw response into an address. It applies no signature policy.
type Client struct {
	caller  Caller
	address common.Address
}

// NewClient creates a client that targets the ecrecover precompile.
func NewClient(caller Caller) *Client {
	return &Client{
		caller:  caller,
		address: EcrecoverAddress,
	}
}

// WithAddress sets the address of the recovery service.
func (c *Client) WithAddress(address common.Address) *Client {
	c.address = address
	return c
}

// Address returns the address of the recovery service.
func (c *Client) Address() common.Address {
	return c.address
}

// Ecrecover calls the recovery service with (digest, v, r, s).
//
// The last 20 bytes of the response are returned as the address. A failed
// call or a response shorter than an address yields ErrCallFailed.
func (c *Client) Ecrecover(ctx context.Context, digest common.Hash, v uint8, r, s common.Hash) (common.Address, error) {
	out, err := c.caller.Call(ctx, c.address, EncodeInput(digest, v, r, s))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrCallFailed, err)
	}
	if len(out) < common.AddressLength {
		return common.Address{}, fmt.Errorf("%w: response is %d bytes", ErrCallFailed, len(out))
	}
	return common.BytesToAddress(out[len(out)-common.AddressLength:]), nil
}

// EncodeInput lays out the call payload as digest || uint256(v) || r || s.
func EncodeInput(digest common.Hash, v uint8, r, s common.Hash) []byte {
	input := make([]byte, InputLength)
	copy(input[0:32], digest[:])
	input[63] = v
	copy(input[64:96], r[:])
	copy(input[96:128], s[:])
	return input
}
