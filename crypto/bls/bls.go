// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package bls implements BLS signatures over the BN254 curve with
// signatures on G1 and public keys on both G1 and G2, which is the layout
// the BLSSignatureChecker contracts verify.
package bls

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"
)

var (
	ErrInvalidPoint      = errors.New("invalid curve point")
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrNoSignatures      = errors.New("no signatures to aggregate")
)

const (
	G1PointSize = bn254.SizeOfG1AffineCompressed
	G2PointSize = bn254.SizeOfG2AffineCompressed
)

// G1Point is an affine point on G1.
type G1Point struct {
	bn254.G1Affine
}

func NewG1Point(x, y *big.Int) *G1Point {
	p := &G1Point{}
	p.X.SetBigInt(x)
	p.Y.SetBigInt(y)
	return p
}

// NewZeroG1Point returns the point at infinity.
func NewZeroG1Point() *G1Point {
	return &G1Point{}
}

// G1PointFromBytes decodes a compressed point, checking it is on the
// curve and in the right subgroup.
func G1PointFromBytes(b []byte) (*G1Point, error) {
	p := &G1Point{}
	if _, err := p.SetBytes(b); err != nil {
		return nil, errors.Wrap(ErrInvalidPoint, err.Error())
	}
	return p, nil
}

// Add adds o to p in place and returns p.
func (p *G1Point) Add(o *G1Point) *G1Point {
	p.G1Affine.Add(&p.G1Affine, &o.G1Affine)
	return p
}

func (p *G1Point) Clone() *G1Point {
	return &G1Point{p.G1Affine}
}

func (p *G1Point) Equal(o *G1Point) bool {
	return p.G1Affine.Equal(&o.G1Affine)
}

// Bytes returns the compressed encoding of the point.
func (p *G1Point) Bytes() []byte {
	b := p.G1Affine.Bytes()
	return b[:]
}

// Coordinates returns the big endian affine coordinates.
func (p *G1Point) Coordinates() (x, y *big.Int) {
	return p.X.BigInt(new(big.Int)), p.Y.BigInt(new(big.Int))
}

func (p G1Point) MarshalText() ([]byte, error) {
	return []byte("0x" + hex.EncodeToString(p.Bytes())), nil
}

func (p *G1Point) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(strings.TrimPrefix(string(text), "0x"))
	if err != nil {
		return errors.Wrap(ErrInvalidPoint, err.Error())
	}
	q, err := G1PointFromBytes(b)
	if err != nil {
		return err
	}
	*p = *q
	return nil
}

// G2Point is an affine point on G2.
type G2Point struct {
	bn254.G2Affine
}

// NewZeroG2Point returns the point at infinity.
func NewZeroG2Point() *G2Point {
	return &G2Point{}
}

func G2PointFromBytes(b []byte) (*G2Point, error) {
	p := &G2Point{}
	if _, err := p.SetBytes(b); err != nil {
		return nil, errors.Wrap(ErrInvalidPoint, err.Error())
	}
	return p, nil
}

// Add adds o to p in place and returns p.
func (p *G2Point) Add(o *G2Point) *G2Point {
	p.G2Affine.Add(&p.G2Affine, &o.G2Affine)
	return p
}

func (p *G2Point) Clone() *G2Point {
	return &G2Point{p.G2Affine}
}

func (p *G2Point) Equal(o *G2Point) bool {
	return p.G2Affine.Equal(&o.G2Affine)
}

func (p *G2Point) Bytes() []byte {
	b := p.G2Affine.Bytes()
	return b[:]
}

// Coordinates returns the point as [X.A1, X.A0, Y.A1, Y.A0], the order
// used by the solidity BN254 library.
func (p *G2Point) Coordinates() [4]*big.Int {
	return [4]*big.Int{
		p.X.A1.BigInt(new(big.Int)),
		p.X.A0.BigInt(new(big.Int)),
		p.Y.A1.BigInt(new(big.Int)),
		p.Y.A0.BigInt(new(big.Int)),
	}
}

func (p G2Point) MarshalText() ([]byte, error) {
	return []byte("0x" + hex.EncodeToString(p.Bytes())), nil
}

func (p *G2Point) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(strings.TrimPrefix(string(text), "0x"))
	if err != nil {
		return errors.Wrap(ErrInvalidPoint, err.Error())
	}
	q, err := G2PointFromBytes(b)
	if err != nil {
		return err
	}
	*p = *q
	return nil
}

// Signature is a G1 point.
type Signature struct {
	*G1Point
}

func SignatureFromBytes(b []byte) (*Signature, error) {
	p, err := G1PointFromBytes(b)
	if err != nil {
		return nil, err
	}
	return &Signature{p}, nil
}

// Verify checks e(sig, g2) == e(H(m), pk), the pairing check is done as
// e(sig, g2) * e(-H(m), pk) == 1.
func (s *Signature) Verify(pubKey *G2Point, digest [32]byte) (bool, error) {
	_, _, _, g2Gen := bn254.Generators()
	h := HashToG1(digest)

	var negH bn254.G1Affine
	negH.Neg(&h.G1Affine)

	return bn254.PairingCheck(
		[]bn254.G1Affine{s.G1Affine, negH},
		[]bn254.G2Affine{g2Gen, pubKey.G2Affine},
	)
}

// KeyPair holds a secret scalar and the matching public keys on G1 and G2.
type KeyPair struct {
	PrivKey  *fr.Element
	PubKeyG1 *G1Point
	PubKeyG2 *G2Point
}

func NewKeyPair(sk *fr.Element) *KeyPair {
	_, _, g1Gen, g2Gen := bn254.Generators()
	s := sk.BigInt(new(big.Int))

	pk1 := &G1Point{}
	pk1.ScalarMultiplication(&g1Gen, s)
	pk2 := &G2Point{}
	pk2.ScalarMultiplication(&g2Gen, s)

	return &KeyPair{
		PrivKey:  sk,
		PubKeyG1: pk1,
		PubKeyG2: pk2,
	}
}

// GenerateKeyPair creates a key pair from a random scalar.
func GenerateKeyPair() (*KeyPair, error) {
	sk, err := new(fr.Element).SetRandom()
	if err != nil {
		return nil, err
	}
	return NewKeyPair(sk), nil
}

// KeyPairFromString builds a key pair from a base 10 or 0x prefixed
// hexadecimal secret.
func KeyPairFromString(s string) (*KeyPair, error) {
	var (
		v  *big.Int
		ok bool
	)
	if strings.HasPrefix(s, "0x") {
		v, ok = new(big.Int).SetString(s[2:], 16)
	} else {
		v, ok = new(big.Int).SetString(s, 10)
	}
	if !ok || v.Sign() <= 0 || v.Cmp(fr.Modulus()) >= 0 {
		return nil, ErrInvalidPrivateKey
	}
	return NewKeyPair(new(fr.Element).SetBigInt(v)), nil
}

// KeyPairFromBytes builds a key pair from the 32 bytes big endian secret.
func KeyPairFromBytes(b []byte) (*KeyPair, error) {
	if len(b) != fr.Bytes {
		return nil, ErrInvalidPrivateKey
	}
	v := new(big.Int).SetBytes(b)
	if v.Sign() == 0 || v.Cmp(fr.Modulus()) >= 0 {
		return nil, ErrInvalidPrivateKey
	}
	return NewKeyPair(new(fr.Element).SetBigInt(v)), nil
}

// PrivKeyBytes returns the secret as 32 bytes big endian.
func (k *KeyPair) PrivKeyBytes() []byte {
	b := k.PrivKey.Bytes()
	return b[:]
}

// SignMessage signs the digest: sig = sk * H(m).
func (k *KeyPair) SignMessage(digest [32]byte) *Signature {
	h := HashToG1(digest)
	sig := &G1Point{}
	sig.ScalarMultiplication(&h.G1Affine, k.PrivKey.BigInt(new(big.Int)))
	return &Signature{sig}
}

// HashToG1 maps a digest on G1 with the try-and-increment method of the
// BN254 solidity library, so signatures can be checked on-chain.
func HashToG1(digest [32]byte) *G1Point {
	var (
		modulus = fp.Modulus()
		three   = big.NewInt(3)
		one     = big.NewInt(1)
	)

	x := new(big.Int).SetBytes(digest[:])
	x.Mod(x, modulus)
	for {
		// y^2 = x^3 + 3
		y := new(big.Int).Exp(x, three, modulus)
		y.Add(y, three)
		y.Mod(y, modulus)
		if y.ModSqrt(y, modulus) != nil {
			return NewG1Point(x, y)
		}
		x.Add(x, one)
		x.Mod(x, modulus)
	}
}

// CheckKeyConsistency verifies that g1 and g2 carry the same secret,
// e(pk1, g2) == e(g1, pk2).
func CheckKeyConsistency(pk1 *G1Point, pk2 *G2Point) (bool, error) {
	_, _, g1Gen, g2Gen := bn254.Generators()
	var negG1 bn254.G1Affine
	negG1.Neg(&g1Gen)
	return bn254.PairingCheck(
		[]bn254.G1Affine{pk1.G1Affine, negG1},
		[]bn254.G2Affine{g2Gen, pk2.G2Affine},
	)
}

// AggregateSignatures sums the signatures.
func AggregateSignatures(sigs []*Signature) (*Signature, error) {
	if len(sigs) == 0 {
		return nil, ErrNoSignatures
	}
	agg := NewZeroG1Point()
	for _, s := range sigs {
		agg.Add(s.G1Point)
	}
	return &Signature{agg}, nil
}

// AggregatePubKeys sums the G2 public keys.
func AggregatePubKeys(keys []*G2Point) *G2Point {
	agg := NewZeroG2Point()
	for _, k := range keys {
		agg.Add(k)
	}
	return agg
}
