package starknet

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
	"github.com/stretchr/testify/assert"
)

func TestKeyPairFromPrivateKey_Generator(t *testing.T) {
	// The public key for k=1 is the generator's x-coordinate.
	kp, err := KeyPairFromPrivateKey(big.NewInt(1))
	assert.NoError(t, err)
	assert.Equal(t, felt(t, "0x1ef15c18599971b7beced415a40f0c7deacfd9b0d1819e03d723d8bc943cfca"), kp.PublicKey)
}

func TestKeyPairFromPrivateKey_Deterministic(t *testing.T) {
	k := felt(t, "0x12345678deadbeef")
	first, err := KeyPairFromPrivateKey(k)
	assert.NoError(t, err)
	second, err := KeyPairFromPrivateKey(k)
	assert.NoError(t, err)
	assert.Equal(t, first.PublicKey, second.PublicKey)
}

func TestKeyPairFromPrivateKey_RejectsOutOfRange(t *testing.T) {
	for _, k := range []*big.Int{
		nil,
		big.NewInt(0),
		big.NewInt(-1),
		fr.Modulus(),
	} {
		_, err := KeyPairFromPrivateKey(k)
		assert.ErrorIs(t, err, ErrInvalidPrivateKey)
	}
}

func TestGenerateKeyPair_InjectedRandomness(t *testing.T) {
	seed := make([]byte, 128)
	for i := range seed {
		seed[i] = byte(i * 7)
	}

	first, err := GenerateKeyPair(bytes.NewReader(seed))
	assert.NoError(t, err)
	second, err := GenerateKeyPair(bytes.NewReader(seed))
	assert.NoError(t, err)

	// Same randomness source state, same key.
	assert.Equal(t, first.PrivateKey, second.PrivateKey)
	assert.Equal(t, first.PublicKey, second.PublicKey)

	derived, err := KeyPairFromPrivateKey(first.PrivateKey)
	assert.NoError(t, err)
	assert.Equal(t, derived.PublicKey, first.PublicKey)
}

func TestGenerateKeyPair_NilSource(t *testing.T) {
	_, err := GenerateKeyPair(nil)
	assert.Error(t, err)
}
