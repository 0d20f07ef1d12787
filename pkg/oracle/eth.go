package oracle

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EthCaller reaches the recovery service through eth_call on an Ethereum node.
type EthCaller struct {
	client *ethclient.Client
	block  *big.Int
}

// DialEthCaller connects to the JSON-RPC endpoint at rawurl.
func DialEthCaller(ctx context.Context, rawurl string) (*EthCaller, error) {
	client, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rawurl, err)
	}
	return NewEthCaller(client), nil
}

// NewEthCaller wraps an existing client. Calls run against the latest block.
func NewEthCaller(client *ethclient.Client) *EthCaller {
	return &EthCaller{client: client}
}

// AtBlock pins calls to the given block number; nil means latest.
func (e *EthCaller) AtBlock(number *big.Int) *EthCaller {
	e.block = number
	return e
}

// Call implements Caller.
func (e *EthCaller) Call(ctx context.Context, to common.Address, input []byte) ([]byte, error) {
	msg := ethereum.CallMsg{
		To:   &to,
		Data: input,
	}
	return e.client.CallContract(ctx, msg, e.block)
}

// Close releases the underlying RPC connection.
func (e *EthCaller) Close() {
	e.client.Close()
}
