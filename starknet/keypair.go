package starknet

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
)

var ErrInvalidPrivateKey = errors.New("private key must be in [1, curve order)")

// KeyPair holds a STARK curve private scalar and its derived public key.
// Immutable after construction; the private key never leaves the process.
type KeyPair struct {
	PrivateKey *big.Int
	PublicKey  *big.Int
}

// KeyPairFromPrivateKey derives the public key, the x-coordinate of [k]G,
// from a private scalar. The derivation is deterministic.
func KeyPairFromPrivateKey(k *big.Int) (KeyPair, error) {
	if err := validatePrivateKey(k); err != nil {
		return KeyPair{}, err
	}

	var point starkcurve.G1Affine
	point.ScalarMultiplicationBase(k)

	return KeyPair{
		PrivateKey: new(big.Int).Set(k),
		PublicKey:  point.X.BigInt(new(big.Int)),
	}, nil
}

// GenerateKeyPair draws a fresh private key from the supplied randomness
// source and derives its key pair. Production callers pass crypto/rand's
// Reader; tests can inject a deterministic source.
func GenerateKeyPair(random io.Reader) (KeyPair, error) {
	if random == nil {
		return KeyPair{}, fmt.Errorf("randomness source is nil")
	}

	// rand.Int returns a value in [0, max); shift by one to land in
	// [1, order).
	bound := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
	k, err := rand.Int(random, bound)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to draw private key: %w", err)
	}
	k.Add(k, big.NewInt(1))

	return KeyPairFromPrivateKey(k)
}

func validatePrivateKey(k *big.Int) error {
	if k == nil || k.Sign() <= 0 || k.Cmp(fr.Modulus()) >= 0 {
		return ErrInvalidPrivateKey
	}
	return nil
}
