// Package curve implements Montgomery-curve and projective x-only point
// arithmetic over the field built by package gf: curve doubling/tripling,
// the three-point ladder, j-invariant computation, and curve recovery from
// three x-coordinates.
//
// Every point here is a projective (X:Z) pair; affine x-coordinates only
// appear at the walk's boundary (public keys in, public keys out) so that
// the one Fp2 inversion per side happens exactly once, via gf.Batch3Inv.
package curve

import "github.com/J08nY/PQCrypto-SIDH/gf"

// Params is a Montgomery curve y^2 = x^3 + (A/C)x^2 + x in projective form.
// C != 0 is the only invariant; (A:C) and (lambda*A:lambda*C) denote the
// same curve.
type Params struct {
	A, C gf.Fp2
}

// ParamsFromAffine builds the projective form of a curve given in affine
// form (C = 1).
func ParamsFromAffine(a *gf.Fp2) Params {
	f := a.Field()
	return Params{A: *a, C: *f.One2()}
}

// cached holds the precomputed combinations Double and Triple reuse across
// repeated calls on the same curve.
type cached struct {
	aPlus2C gf.Fp2
	c4      gf.Fp2
}

func (p *Params) cache() cached {
	var c cached
	c.aPlus2C.Add(&p.C, &p.C) // 2C
	c.c4.Add(&c.aPlus2C, &c.aPlus2C)
	c.aPlus2C.Add(&c.aPlus2C, &p.A) // 2C + A
	return c
}

func const256(f *gf.Field) *gf.Fp2 {
	v := f.EltFromUint64(256)
	return f.FromPrimeField(v)
}

// JInvariant computes the Montgomery j-invariant
// 256(A^2-3C^2)^3 / (C^4(A^2-4C^2)), normalized with one Fp2 inversion.
func (p *Params) JInvariant() *gf.Fp2 {
	f := p.A.Field()
	var v0, v1, v2, v3 gf.Fp2
	v0.Square(&p.C)     // C^2
	v1.Square(&p.A)     // A^2
	v2.Add(&v0, &v0)    // 2C^2
	v3.Add(&v2, &v0)    // 3C^2
	v2.Add(&v2, &v2)    // 4C^2
	v2.Sub(&v1, &v2)    // A^2 - 4C^2
	v1.Sub(&v1, &v3)    // A^2 - 3C^2
	v3.Square(&v1)      // (A^2-3C^2)^2
	v3.Mul(&v3, &v1)    // (A^2-3C^2)^3
	v0.Square(&v0)      // C^4
	v3.Mul(&v3, const256(f))
	v2.Mul(&v2, &v0) // C^4(A^2-4C^2)
	v2.Inv(&v2)
	v0.Mul(&v3, &v2)
	return &v0
}

// Singular reports whether the curve A^2 = 4C^2, i.e. whether it degenerates
// (the isogeny walk and j-invariant are undefined there).
func (p *Params) Singular() bool {
	var a2, c2, fourC2 gf.Fp2
	a2.Square(&p.A)
	c2.Square(&p.C)
	fourC2.Add(&c2, &c2)
	fourC2.Add(&fourC2, &fourC2)
	return a2.VartimeEq(&fourC2)
}

// RecoverParams reconstructs the projective curve coefficients (A:1) from
// the affine x-coordinates of P, Q, Q-P for some Montgomery curve carrying
// all three, using the relation
//
//	A = ((1 - x1 x2 - x1 x3 - x2 x3)^2 - 4 x1 x2 x3 (x1+x2+x3)) / (4 x1 x2 x3) - (x1+x2+x3)
//
// computed here in the equivalent unnormalized form (A':C') so that the
// division only happens once the caller actually needs the affine A. It
// returns ok=false if 4*x1*x2*x3 = 0, meaning the three points are not
// consistent with any Montgomery curve (spec's InvalidPublicKey condition).
func RecoverParams(x1, x2, x3 *gf.Fp2) (params Params, ok bool) {
	var t0, t1 gf.Fp2
	one := x1.Field().One2()
	t0.Set(one)
	t1.Mul(x1, x2)
	t0.Sub(&t0, &t1) // 1 - x1x2
	t1.Mul(x1, x3)
	t0.Sub(&t0, &t1) // 1 - x1x2 - x1x3
	t1.Mul(x2, x3)
	t0.Sub(&t0, &t1) // 1 - x1x2 - x1x3 - x2x3

	params.A.Square(&t0)

	t1.Mul(&t1, x1)      // x1x2x3
	if t1.IsZero() {
		return Params{}, false
	}
	t1.Add(&t1, &t1)     // 2x1x2x3
	params.C.Add(&t1, &t1) // 4x1x2x3

	t0.Add(x1, x2)
	t0.Add(&t0, x3) // x1+x2+x3
	t1.Mul(&params.C, &t0)
	params.A.Sub(&params.A, &t1)

	return params, true
}

// Point is a point on the Kummer line P^1(F_{p^2}) of a Montgomery curve:
// x = X/Z, with Z = 0 denoting the point at infinity.
type Point struct {
	X, Z gf.Fp2
}

// FromAffine lifts an affine x-coordinate to projective form (x:1).
func FromAffine(x *gf.Fp2) Point {
	f := x.Field()
	return Point{X: *x, Z: *f.One2()}
}

// FromAffinePrimeField lifts an affine prime-field x-coordinate.
func FromAffinePrimeField(x *gf.Fp) Point {
	f := x.Field()
	return Point{X: *f.FromPrimeField(x), Z: *f.One2()}
}

// ToAffine normalizes a point with one Fp2 inversion.
func (p *Point) ToAffine() *gf.Fp2 {
	var inv, x gf.Fp2
	inv.Inv(&p.Z)
	x.Mul(&p.X, &inv)
	return &x
}

// VartimeEq reports whether p and q denote the same projective point.
func (p *Point) VartimeEq(q *Point) bool {
	var t0, t1 gf.Fp2
	t0.Mul(&p.X, &q.Z)
	t1.Mul(&p.Z, &q.X)
	return t0.VartimeEq(&t1)
}

func swap(p, q *Point, choice bool) {
	gf.ConditionalSwap2(&p.X, &q.X, choice)
	gf.ConditionalSwap2(&p.Z, &q.Z, choice)
}

// Add computes xR = x(P+Q) given xP, xQ, and xPmQ = x(P-Q) (differential
// addition, Algorithm 1 of Costello-Smith). Safe to overlap xR with any
// input.
func (xR *Point) Add(xP, xQ, xPmQ *Point) *Point {
	var v0, v1, v2, v3, v4 gf.Fp2
	v0.Add(&xP.X, &xP.Z)
	v1.Sub(&xQ.X, &xQ.Z).Mul(&v1, &v0)
	v0.Sub(&xP.X, &xP.Z)
	v2.Add(&xQ.X, &xQ.Z).Mul(&v2, &v0)
	v3.Add(&v1, &v2).Square(&v3)
	v4.Sub(&v1, &v2).Square(&v4)
	v0.Mul(&xPmQ.Z, &v3)
	xR.Z.Mul(&xPmQ.X, &v4)
	xR.X = v0
	return xR
}

// Double computes xQ = x([2]P) given the curve's cached A+2C, 4C values
// (Algorithm 2 of Costello-Smith).
func (xQ *Point) Double(xP *Point, c *cached) *Point {
	var v1, v2, v3, xz4 gf.Fp2
	v1.Add(&xP.X, &xP.Z).Square(&v1)
	v2.Sub(&xP.X, &xP.Z).Square(&v2)
	xz4.Sub(&v1, &v2)
	v2.Mul(&v2, &c.c4)
	xQ.X.Mul(&v1, &v2)
	v3.Mul(&xz4, &c.aPlus2C)
	v3.Add(&v3, &v2)
	xQ.Z.Mul(&v3, &xz4)
	return xQ
}

// Triple computes xQ = x([3]P) using the Costello-Longa-Naehrig tripling
// formulas (one doubling folded into the addition P + [2]P).
func (xQ *Point) Triple(xP *Point, c *cached) *Point {
	var v0, v1, v2, v3, v4, v5 gf.Fp2
	v2.Sub(&xP.X, &xP.Z)
	v3.Add(&xP.X, &xP.Z)
	v0.Square(&v2)
	v1.Square(&v3)
	v4.Mul(&v0, &c.c4)
	v5.Mul(&v4, &v1)
	v1.Sub(&v1, &v0)
	v0.Mul(&v1, &c.aPlus2C)
	v4.Add(&v4, &v0).Mul(&v4, &v1)

	v0.Add(&v5, &v4).Mul(&v0, &v2)
	v1.Sub(&v5, &v4).Mul(&v1, &v3)
	v4.Sub(&v0, &v1).Square(&v4)
	v5.Add(&v0, &v1).Square(&v5)
	v2.Mul(&xP.Z, &v5)
	xQ.Z.Mul(&xP.X, &v4)
	xQ.X = v2
	return xQ
}

// DoubleE computes xQ = x([2^e]P), iterating Double e times.
func (xQ *Point) DoubleE(curve *Params, xP *Point, e uint32) *Point {
	c := curve.cache()
	*xQ = *xP
	for i := uint32(0); i < e; i++ {
		xQ.Double(xQ, &c)
	}
	return xQ
}

// TripleE computes xQ = x([3^e]P), iterating Triple e times.
func (xQ *Point) TripleE(curve *Params, xP *Point, e uint32) *Point {
	c := curve.cache()
	*xQ = *xP
	for i := uint32(0); i < e; i++ {
		xQ.Triple(xQ, &c)
	}
	return xQ
}

// bit returns bit i (0 = LSB) of a big-endian byte scalar, for i in
// [0, 8*len(scalar)).
func bit(scalar []byte, i int) uint8 {
	byteIdx := len(scalar) - 1 - i/8
	return (scalar[byteIdx] >> uint(i%8)) & 1
}

// ThreePointLadder computes xR = x(P + [k]Q) given xP, xQ, xPmQ = x(P-Q) on
// curve, and a scalar k of exactly nbits bits (the de Feo-Jao-Plut
// three-point ladder). The scalar is scanned MSB to LSB; nbits fixes the
// number of loop iterations so that execution time depends only on nbits,
// not on the value of k.
func (xR *Point) ThreePointLadder(curveP *Params, xP, xQ, xPmQ *Point, scalar []byte, nbits int) *Point {
	c := curveP.cache()
	var x0, x1, x2, y0, y1, tmp Point

	f := xP.X.Field()
	x0.X = *f.One2()
	x0.Z = *f.Zero2()
	x1 = *xQ
	x2 = *xP
	y0 = *xP
	y1 = *xPmQ

	prevBit := uint8(0)
	for i := nbits - 1; i >= 0; i-- {
		b := bit(scalar, i)
		swap(&x0, &x1, (b^prevBit) != 0)
		swap(&y0, &y1, (b^prevBit) != 0)
		x2.Add(&x2, &x0, &y0)
		tmp.Double(&x0, &c)
		x1.Add(&x1, &x0, xQ)
		x0 = tmp
		prevBit = b
	}

	*xR = x2
	return xR
}

// DistortAndDifference computes x(tau(P)-P) for P on the base curve
// y^2 = x^3 + x (A=0, C=1), where tau(x,y) = (-x, i*y) is the distortion
// map. The trace-zero x-coordinate this produces is always of the form
// (x_P^2+1)*i over 2*x_P, i.e. purely imaginary numerator and purely real
// denominator.
func DistortAndDifference(affineXP *gf.Fp) Point {
	f := affineXP.Field()
	var xSq, xSqPlus1, twoX gf.Fp
	xSq.Square(affineXP)
	xSqPlus1.Add(f.One(), &xSq)
	twoX.Add(affineXP, affineXP)

	var xR Point
	xR.X = *f.Elt2(f.Zero(), &xSqPlus1)
	xR.Z = *f.Elt2(&twoX, f.Zero())
	return xR
}
