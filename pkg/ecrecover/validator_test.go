package ecrecover

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mahdiidarabi/ecdsa-recover/pkg/oracle"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var (
	testDigest = common.HexToHash("0xa1de988600a42c4b4ab089b619297c17d53cffae5d5120d82d8a92d0bb3b78f2")
	testR      = common.HexToHash("0x65e72b1cf8e189569963750e10ccb88fe89389daeeb8b735277d59cd6885ee82")
	testS      = common.HexToHash("0x3eb5a6982b540f185703492dab77b863a88ce01f27e21ade8b2879c10fc9e653")
	testSigner = common.HexToAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	stubSigner = common.HexToAddress("0x1234567890123456789012345678901234567890")
)

func softwareValidator() *Validator {
	return NewValidator(oracle.NewClient(oracle.NewSoftware()))
}

// flipS returns N - s, the other valid s for the same signature.
func flipS(s common.Hash) common.Hash {
	n := new(big.Int).Sub(Secp256k1N, new(big.Int).SetBytes(s[:]))
	return common.BigToHash(n)
}

func TestValidator_Recover(t *testing.T) {
	m := &mockRecoverer{addr: stubSigner}

	addr, err := NewValidator(m).Recover(context.Background(), testDigest, 28, testR, testS)
	require.NoError(t, err)
	require.Equal(t, stubSigner, addr)
	require.EqualValues(t, 1, m.calls.Load())
}

func TestValidator_Recover_InvalidV(t *testing.T) {
	m := &mockRecoverer{addr: stubSigner}
	val := NewValidator(m)

	for v := 0; v <= 255; v++ {
		if v == 27 || v == 28 {
			continue
		}
		_, err := val.Recover(context.Background(), testDigest, uint8(v), testR, testS)
		require.ErrorIs(t, err, ErrInvalidSignatureV, "v=%d", v)
	}
	require.Zero(t, m.calls.Load())
}

func TestValidator_Recover_InvalidS(t *testing.T) {
	m := &mockRecoverer{addr: stubSigner}
	val := NewValidator(m)

	maxWord := common.HexToHash("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	cases := map[string]common.Hash{
		"N-1":       common.BigToHash(new(big.Int).Sub(Secp256k1N, big.NewInt(1))),
		"N/2+1":     common.BigToHash(new(big.Int).Add(Secp256k1HalfN, big.NewInt(1))),
		"N":         common.BigToHash(Secp256k1N),
		"2^256-1":   maxWord,
		"flipped s": flipS(testS),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := val.Recover(context.Background(), testDigest, 28, testR, s)
			require.ErrorIs(t, err, ErrInvalidSignatureS)
		})
	}
	require.Zero(t, m.calls.Load())
}

func TestValidator_Recover_HalfOrderBoundary(t *testing.T) {
	m := &mockRecoverer{addr: stubSigner}

	addr, err := NewValidator(m).Recover(context.Background(), testDigest, 27, testR, common.BigToHash(Secp256k1HalfN))
	require.NoError(t, err)
	require.Equal(t, stubSigner, addr)
}

func TestValidator_Recover_VCheckedBeforeS(t *testing.T) {
	val := NewValidator(&mockRecoverer{addr: stubSigner})

	_, err := val.Recover(context.Background(), testDigest, 29, testR, flipS(testS))
	require.ErrorIs(t, err, ErrInvalidSignatureV)
}

func TestValidator_Recover_ZeroAddress(t *testing.T) {
	m := &mockRecoverer{}

	_, err := NewValidator(m).Recover(context.Background(), testDigest, 28, testR, testS)
	require.ErrorIs(t, err, ErrInvalidSignature)
	require.EqualValues(t, 1, m.calls.Load())
}

func TestValidator_Recover_OracleError(t *testing.T) {
	cause := errors.New("host rejected call")
	m := &mockRecoverer{err: cause}

	_, err := NewValidator(m).Recover(context.Background(), testDigest, 28, testR, testS)
	require.ErrorIs(t, err, ErrOracleUnavailable)
	require.ErrorIs(t, err, cause)
	require.EqualValues(t, 1, m.calls.Load())
}

func TestValidator_Recover_OraclePanic(t *testing.T) {
	m := &mockRecoverer{panic: "resources exhausted"}

	addr, err := NewValidator(m).Recover(context.Background(), testDigest, 28, testR, testS)
	require.ErrorIs(t, err, ErrOracleUnavailable)
	require.Contains(t, err.Error(), "resources exhausted")
	require.Equal(t, common.Address{}, addr)
}

func TestValidator_Recover_OracleCallFailed(t *testing.T) {
	val := NewValidator(oracle.NewClient(oracle.NewSoftware()).WithAddress(common.HexToAddress("0x09")))

	_, err := val.Recover(context.Background(), testDigest, 28, testR, testS)
	require.ErrorIs(t, err, ErrOracleUnavailable)
	require.ErrorIs(t, err, oracle.ErrCallFailed)
}

func TestValidator_Recover_Idempotent(t *testing.T) {
	val := softwareValidator()
	ctx := context.Background()

	first, err1 := val.Recover(ctx, testDigest, 28, testR, testS)
	second, err2 := val.Recover(ctx, testDigest, 28, testR, testS)
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, first, second)

	_, err1 = val.Recover(ctx, testDigest, 28, common.Hash{}, testS)
	_, err2 = val.Recover(ctx, testDigest, 28, common.Hash{}, testS)
	require.ErrorIs(t, err1, ErrInvalidSignature)
	require.Equal(t, err1, err2)
}

func TestValidator_Recover_SoftwareOracle(t *testing.T) {
	addr, err := softwareValidator().Recover(context.Background(), testDigest, 28, testR, testS)
	require.NoError(t, err)
	require.Equal(t, testSigner, addr)
}

func TestValidator_Recover_MalleabilityExclusivity(t *testing.T) {
	ctx := context.Background()
	client := oracle.NewClient(oracle.NewSoftware())

	// Both encodings recover the same signer from the raw primitive.
	twinS := flipS(testS)
	raw, err := client.Ecrecover(ctx, testDigest, 27, testR, twinS)
	require.NoError(t, err)
	require.Equal(t, testSigner, raw)

	val := NewValidator(client)
	addr, err := val.Recover(ctx, testDigest, 28, testR, testS)
	require.NoError(t, err)
	require.Equal(t, testSigner, addr)

	_, err = val.Recover(ctx, testDigest, 27, testR, twinS)
	require.ErrorIs(t, err, ErrInvalidSignatureS)
}

func TestValidator_Recover_SignedMessages(t *testing.T) {
	val := softwareValidator()
	ctx := context.Background()

	for i := 1; i <= 8; i++ {
		key := secp256k1.PrivKeyFromBytes(crypto.Keccak256([]byte{byte(i)}))
		digest := HashMessage([]byte{'m', byte(i)})
		want := common.BytesToAddress(crypto.Keccak256(key.PubKey().SerializeUncompressed()[1:])[12:])

		compact := ecdsa.SignCompact(key, digest[:], false)
		sig := Signature{V: compact[0], R: common.BytesToHash(compact[1:33]), S: common.BytesToHash(compact[33:65])}
		require.True(t, sig.IsLowS())

		addr, err := val.RecoverSignature(ctx, digest, sig)
		require.NoError(t, err)
		require.Equal(t, want, addr)

		twin := Signature{V: 55 - sig.V, R: sig.R, S: flipS(sig.S)}
		_, err = val.RecoverSignature(ctx, digest, twin)
		require.ErrorIs(t, err, ErrInvalidSignatureS)
	}
}

func TestValidator_WithLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	val := NewValidator(&mockRecoverer{addr: stubSigner}).WithLogger(log)

	_, err := val.Recover(context.Background(), testDigest, 30, testR, testS)
	require.Error(t, err)
	require.NotNil(t, hook.LastEntry())
	require.Equal(t, "rejected signature", hook.LastEntry().Message)
	require.Equal(t, "v", hook.LastEntry().Data["reason"])

	_, err = val.Recover(context.Background(), testDigest, 28, testR, flipS(testS))
	require.Error(t, err)
	require.Equal(t, "s", hook.LastEntry().Data["reason"])
	require.Len(t, hook.AllEntries(), 2)
}

func TestClassify(t *testing.T) {
	require.Equal(t, "", Classify(nil))
	require.Equal(t, "", Classify(errors.New("other")))
	require.Equal(t, "InvalidSignatureV", Classify(ErrInvalidSignatureV))
	require.Equal(t, "InvalidSignatureS", Classify(ErrInvalidSignatureS))
	require.Equal(t, "InvalidSignature", Classify(ErrInvalidSignature))

	m := &mockRecoverer{err: errors.New("boom")}
	_, err := NewValidator(m).Recover(context.Background(), testDigest, 28, testR, testS)
	require.Equal(t, "OracleUnavailable", Classify(err))
}
