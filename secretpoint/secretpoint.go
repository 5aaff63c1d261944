// Package secretpoint derives the initial kernel generator a party's walk
// starts from: the point P + [k]*Q on the base curve y^2 = x^3 + x, where Q
// is P's torsion twin under the distortion map. This is the one place a raw
// secret scalar touches curve arithmetic before it disappears into the
// projective walk in package walk.
package secretpoint

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/J08nY/PQCrypto-SIDH/curve"
	"github.com/J08nY/PQCrypto-SIDH/gf"
)

// ErrMalformedInput reports a scalar that does not fit the claimed bit
// length, i.e. a secret outside its declared order.
var ErrMalformedInput = errors.New("secretpoint: malformed input")

// Point computes x(P + [k]Q) on the base curve (A=0, C=1), where P is the
// affine prime-field generator (xP, yP) and Q = tau(P) is its image under
// the distortion map tau(x,y) = (-x, iy). k is scanned as an nbits-bit
// big-endian scalar (see curve.ThreePointLadder), so nbits fixes the ladder's
// iteration count regardless of k's actual magnitude.
//
// yP is accepted for parity with the general three-point ladder signature
// but is not read: the base curve's distortion map has the closed form
// x(Q-P) = curve.DistortAndDifference(xP), determined by xP alone, so the
// composition never needs P's y-coordinate explicitly.
func Point(xP, yP *gf.Fp, k *big.Int, nbits int) (curve.Point, error) {
	_ = yP
	if k.Sign() < 0 || k.BitLen() > nbits {
		return curve.Point{}, fmt.Errorf("%w: scalar does not fit in %d bits", ErrMalformedInput, nbits)
	}

	f := xP.Field()
	base := curve.Params{A: *f.Zero2(), C: *f.One2()}

	xPProj := curve.FromAffinePrimeField(xP)
	var negXP gf.Fp
	negXP.Neg(xP)
	xQ := curve.FromAffinePrimeField(&negXP)
	xD := curve.DistortAndDifference(xP)

	scalar := ScalarBytes(k, nbits)

	var r curve.Point
	r.ThreePointLadder(&base, &xPProj, &xQ, &xD, scalar, nbits)
	return r, nil
}

// ScalarBytes encodes k as a big-endian byte slice exactly wide enough to
// hold nbits bits, left-padded with zero bytes, the layout curve.bit and
// curve.ThreePointLadder expect. Exported so package sidh can share it when
// deriving a shared secret over a peer-supplied kernel triple.
func ScalarBytes(k *big.Int, nbits int) []byte {
	byteLen := (nbits + 7) / 8
	if byteLen == 0 {
		byteLen = 1
	}
	buf := make([]byte, byteLen)
	b := k.Bytes()
	copy(buf[byteLen-len(b):], b)
	return buf
}
