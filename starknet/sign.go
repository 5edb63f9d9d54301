package starknet

import (
	"fmt"
	"math/big"

	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	starkecdsa "github.com/consensys/gnark-crypto/ecc/stark-curve/ecdsa"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
)

// curveBeta is the b coefficient of the STARK curve y^2 = x^3 + x + b.
var curveBeta = mustFeltFromHex("0x6f21413efbe40de150e596d72f7a8c5609ad26c15c915c1f4cdfcb99cee9e89")

// Sign produces an ECDSA signature (r, s) over msgHash on the STARK curve.
// The hash is passed to the curve primitive pre-hashed; no further digesting
// happens here.
func Sign(msgHash, privateKey *big.Int) (r, s *big.Int, err error) {
	if err := validatePrivateKey(privateKey); err != nil {
		return nil, nil, err
	}

	key, err := ecdsaKey(privateKey)
	if err != nil {
		return nil, nil, err
	}

	sig, err := key.Sign(feltBytes(msgHash), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign message hash: %w", err)
	}

	r = new(big.Int).SetBytes(sig[:fr.Bytes])
	s = new(big.Int).SetBytes(sig[fr.Bytes : 2*fr.Bytes])
	return r, s, nil
}

// Verify reports whether (r, s) is a valid signature over msgHash for the
// given public key. The public key is an x-coordinate only, so both
// candidate points are tried.
func Verify(msgHash, r, s, publicKey *big.Int) bool {
	point, err := pointFromX(publicKey)
	if err != nil {
		return false
	}

	sig := make([]byte, 0, 2*fr.Bytes)
	rBuf := make([]byte, fr.Bytes)
	sBuf := make([]byte, fr.Bytes)
	r.FillBytes(rBuf)
	s.FillBytes(sBuf)
	sig = append(append(sig, rBuf...), sBuf...)

	var pub starkecdsa.PublicKey
	pub.A = *point
	if ok, err := pub.Verify(sig, feltBytes(msgHash), nil); err == nil && ok {
		return true
	}

	pub.A.Y.Neg(&pub.A.Y)
	ok, err := pub.Verify(sig, feltBytes(msgHash), nil)
	return err == nil && ok
}

// ecdsaKey rebuilds the curve library's private key type from a raw scalar.
// Its serialized form is compressed public point followed by the scalar.
func ecdsaKey(privateKey *big.Int) (*starkecdsa.PrivateKey, error) {
	var point starkcurve.G1Affine
	point.ScalarMultiplicationBase(privateKey)
	pointBytes := point.Bytes()

	buf := make([]byte, len(pointBytes)+fr.Bytes)
	copy(buf, pointBytes[:])
	privateKey.FillBytes(buf[len(pointBytes):])

	var key starkecdsa.PrivateKey
	if _, err := key.SetBytes(buf); err != nil {
		return nil, fmt.Errorf("failed to build signing key: %w", err)
	}
	return &key, nil
}

// pointFromX lifts an x-coordinate onto the curve, picking one of the two
// y roots. The caller tries both parities.
func pointFromX(x *big.Int) (*starkcurve.G1Affine, error) {
	var point starkcurve.G1Affine
	point.X.SetBigInt(x)

	// y^2 = x^3 + x + b
	var ySquared fp.Element
	ySquared.Square(&point.X).Mul(&ySquared, &point.X)
	ySquared.Add(&ySquared, &point.X)
	ySquared.Add(&ySquared, &curveBeta)

	if point.Y.Sqrt(&ySquared) == nil {
		return nil, fmt.Errorf("0x%x is not the x-coordinate of a curve point", x)
	}
	return &point, nil
}

func feltBytes(x *big.Int) []byte {
	buf := make([]byte, fp.Bytes)
	x.FillBytes(buf)
	return buf
}

func mustFeltFromHex(s string) fp.Element {
	value, ok := new(big.Int).SetString(s, 0)
	if !ok {
		panic("invalid felt literal: " + s)
	}
	var e fp.Element
	e.SetBigInt(value)
	return e
}
