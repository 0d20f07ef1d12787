// Package ecrecover recovers the signer of a secp256k1 ECDSA signature while
// rejecting malleable and degenerate signatures.
//
// The elliptic-curve work is delegated to a Recoverer, normally an
// oracle.Client talking to the ecrecover precompile. The Validator adds the
// checks the precompile does not perform:
//
//   - v must be 27 or 28
//   - s must not exceed half the group order, so every signature has exactly
//     one accepted encoding
//   - a recovered zero address is an invalid signature
//
// # Quick Start
//
//	import (
//	    "github.com/mahdiidarabi/ecdsa-recover/pkg/ecrecover"
//	    "github.com/mahdiidarabi/ecdsa-recover/pkg/oracle"
//	)
//
//	// Recover locally with the software precompile
//	validator := ecrecover.NewValidator(oracle.NewClient(oracle.NewSoftware()))
//
//	signer, err := validator.Recover(ctx, digest, 28, r, s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Remote Oracle
//
// Point the client at a node instead to have the precompile run there:
//
//	caller, err := oracle.DialEthCaller(ctx, "http://localhost:8545")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer caller.Close()
//
//	validator := ecrecover.NewValidator(oracle.NewClient(caller))
//
// # Errors
//
// Every failure wraps one of ErrInvalidSignatureV, ErrInvalidSignatureS,
// ErrOracleUnavailable or ErrInvalidSignature; test with errors.Is or
// name the kind with Classify. Deciding whether a recovered address is
// authorized is left to the caller.
package ecrecover
