package ecrecover

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Recoverer is the raw recovery primitive the validator delegates to.
// It applies no policy; oracle.Client is the standard implementation.
type Recoverer interface {
	Ecrecover(ctx context.Context, digest common.Hash, v uint8, r, s common.Hash) (common.Address, error)
}

// Validator enforces signature policy around a Recoverer: v must be 27 or 28,
// s must be in the lower half of the group order, and the zero address is
// never returned.
//
// A Validator holds no per-call state and is safe for concurrent use.
type Validator struct {
	recoverer Recoverer
	log       logrus.FieldLogger
}

// NewValidator creates a validator backed by the given recoverer.
func NewValidator(recoverer Recoverer) *Validator {
	log := logrus.New()
	log.Out = io.Discard
	return &Validator{
		recoverer: recoverer,
		log:       log,
	}
}

// WithLogger sets the logger used to report rejected signatures.
func (val *Validator) WithLogger(log logrus.FieldLogger) *Validator {
	val.log = log
	return val
}

// Recover returns the address that signed digest.
//
// Malformed v or s values are rejected before the recoverer is called.
// A recoverer failure is reported as ErrOracleUnavailable and is not retried.
// A zero address from the recoverer is reported as ErrInvalidSignature.
func (val *Validator) Recover(ctx context.Context, digest common.Hash, v uint8, r, s common.Hash) (common.Address, error) {
	if v != 27 && v != 28 {
		val.log.WithFields(logrus.Fields{"v": v, "reason": "v"}).Debug("rejected signature")
		return common.Address{}, fmt.Errorf("%w: %d", ErrInvalidSignatureV, v)
	}
	if !isLowS(s) {
		val.log.WithFields(logrus.Fields{"s": s.Hex(), "reason": "s"}).Debug("rejected signature")
		return common.Address{}, fmt.Errorf("%w: %s", ErrInvalidSignatureS, s.Hex())
	}

	addr, err := val.ecrecover(ctx, digest, v, r, s)
	if err != nil {
		val.log.WithError(err).WithField("reason", "oracle").Warn("recovery oracle failed")
		return common.Address{}, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	if addr == (common.Address{}) {
		val.log.WithFields(logrus.Fields{"digest": digest.Hex(), "reason": "zero address"}).Debug("rejected signature")
		return common.Address{}, ErrInvalidSignature
	}
	return addr, nil
}

// RecoverSignature is Recover for a Signature value.
func (val *Validator) RecoverSignature(ctx context.Context, digest common.Hash, sig Signature) (common.Address, error) {
	return val.Recover(ctx, digest, sig.V, sig.R, sig.S)
}

// ecrecover calls the recoverer, turning a panic in the call mechanism into an error.
func (val *Validator) ecrecover(ctx context.Context, digest common.Hash, v uint8, r, s common.Hash) (addr common.Address, err error) {
	defer func() {
		if p := recover(); p != nil {
			addr, err = common.Address{}, fmt.Errorf("recovery call aborted: %v", p)
		}
	}()
	return val.recoverer.Ecrecover(ctx, digest, v, r, s)
}
