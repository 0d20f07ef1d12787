package ecrecover

import (
	"context"
	"runtime"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Request is one signature to recover, as loaded from a request file.
type Request struct {
	Digest    common.Hash
	Signature Signature
	Signer    *common.Address // Expected signer, if known
}

// Result holds the outcome of recovering a single Request.
type Result struct {
	Index   int
	Request *Request
	Address common.Address
	Err     error
}

// Matches reports whether recovery succeeded and yielded the expected signer.
func (r *Result) Matches() bool {
	return r.Err == nil && r.Request.Signer != nil && *r.Request.Signer == r.Address
}

// RecoverBatch recovers every request using a pool of workers.
// Results are returned in request order. With workers <= 0 the pool
// size is the number of CPUs. Requests not started before ctx is done
// carry the context error.
func (val *Validator) RecoverBatch(ctx context.Context, requests []*Request, workers int) []*Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(requests) {
		workers = len(requests)
	}
	val.log.WithFields(logrus.Fields{"requests": len(requests), "workers": workers}).Debug("starting batch recovery")

	results := make([]*Result, len(requests))
	work := make(chan int, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i] = val.recoverRequest(ctx, i, requests[i])
			}
		}()
	}

feed:
	for i := range requests {
		select {
		case <-ctx.Done():
			break feed
		case work <- i:
		}
	}
	close(work)
	wg.Wait()

	for i, res := range results {
		if res == nil {
			results[i] = &Result{Index: i, Request: requests[i], Err: ctx.Err()}
		}
	}
	return results
}

func (val *Validator) recoverRequest(ctx context.Context, i int, req *Request) *Result {
	res := &Result{Index: i, Request: req}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	res.Address, res.Err = val.RecoverSignature(ctx, req.Digest, req.Signature)
	return res
}
