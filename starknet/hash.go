package starknet

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	pedersenhash "github.com/consensys/gnark-crypto/ecc/stark-curve/pedersen-hash"
	"github.com/ethereum/go-ethereum/crypto"
)

// selectorMask keeps the low 250 bits of the Keccak digest, per the
// starknet_keccak definition.
var selectorMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

// Pedersen computes the Pedersen hash of two field elements.
func Pedersen(a, b *big.Int) *big.Int {
	var x, y fp.Element
	x.SetBigInt(a)
	y.SetBigInt(b)
	h := pedersenhash.Pedersen(&x, &y)
	return h.BigInt(new(big.Int))
}

// ComputeHashOnElements hashes a variable-length sequence of field elements
// by chaining Pedersen over a zero seed and finishing with the element
// count, the same construction the sequencer uses.
func ComputeHashOnElements(elems []*big.Int) *big.Int {
	digest := new(big.Int)
	for _, e := range elems {
		digest = Pedersen(digest, e)
	}
	return Pedersen(digest, big.NewInt(int64(len(elems))))
}

// HashMessage computes the signable hash of an account-proxied invoke. The
// calldata is digested first so the outer hash keeps a fixed arity no
// matter how long the calldata is.
func HashMessage(account, to, selector *big.Int, calldata []*big.Int, nonce *big.Int) *big.Int {
	return ComputeHashOnElements([]*big.Int{
		account,
		to,
		selector,
		ComputeHashOnElements(calldata),
		nonce,
	})
}

// GetSelectorFromName derives the numeric entry-point selector from its
// name: the low 250 bits of the Keccak-256 digest of the name's bytes.
func GetSelectorFromName(name string) *big.Int {
	digest := new(big.Int).SetBytes(crypto.Keccak256([]byte(name)))
	return digest.And(digest, selectorMask)
}
