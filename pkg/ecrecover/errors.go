package ecrecover

import "errors"

// Errors returned by Recover. Every failure wraps exactly one of them.
var (
	// ErrInvalidSignatureV means v is neither 27 nor 28.
	ErrInvalidSignatureV = errors.New("ecrecover: invalid signature v value")
	// ErrInvalidSignatureS means s is above half the group order.
	ErrInvalidSignatureS = errors.New("ecrecover: invalid signature s value")
	// ErrOracleUnavailable means the recovery oracle failed or returned malformed data.
	ErrOracleUnavailable = errors.New("ecrecover: recovery oracle unavailable")
	// ErrInvalidSignature means the signature recovers to the zero address.
	ErrInvalidSignature = errors.New("ecrecover: invalid signature")
)

// Classify returns the kind name of a Recover error, or "" if err is nil or unknown.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidSignatureV):
		return "InvalidSignatureV"
	case errors.Is(err, ErrInvalidSignatureS):
		return "InvalidSignatureS"
	case errors.Is(err, ErrOracleUnavailable):
		return "OracleUnavailable"
	case errors.Is(err, ErrInvalidSignature):
		return "InvalidSignature"
	default:
		return ""
	}
}
