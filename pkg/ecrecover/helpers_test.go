package ecrecover

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
)

// fixturesDir returns the path of the shared fixtures directory.
func fixturesDir() string {
	return filepath.Join("..", "..", "fixtures")
}

// loadTestRequests loads requests from a JSON file in the fixtures directory.
func loadTestRequests(filename string) ([]*Request, error) {
	parser := &JSONParser{}
	return parser.ParseRequests(filepath.Join(fixturesDir(), filename))
}

// mockRecoverer is a deterministic Recoverer that counts its invocations.
type mockRecoverer struct {
	addr  common.Address
	err   error
	panic interface{}
	calls atomic.Int64
}

func (m *mockRecoverer) Ecrecover(ctx context.Context, digest common.Hash, v uint8, r, s common.Hash) (common.Address, error) {
	m.calls.Add(1)
	if m.panic != nil {
		panic(m.panic)
	}
	return m.addr, m.err
}
