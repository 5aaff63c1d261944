// Package isogeny implements 4- and 3-isogeny construction and point
// evaluation on Montgomery curves in projective (A:C) form, following the
// formulas of Costello-Longa-Naehrig, plus the exceptional first 4-isogeny
// needed to leave the SIDH base curve.
package isogeny

import (
	"errors"

	"github.com/J08nY/PQCrypto-SIDH/curve"
	"github.com/J08nY/PQCrypto-SIDH/gf"
)

// ErrDegenerateKernel is returned when a supposed order-3 or order-4 kernel
// point evaluates to (0:0) or to the point at infinity: the walk has landed
// on a curve the caller's key material is not consistent with.
var ErrDegenerateKernel = errors.New("isogeny: degenerate kernel point")

// ThreeIsogeny holds the data needed to evaluate a 3-isogeny once its
// codomain has been derived; evaluation reuses the kernel coordinates
// directly, so no other precomputed constants are needed.
type ThreeIsogeny struct {
	x, z gf.Fp2
}

// ComputeThree derives the codomain E_(A':C') = E_(A:C)/<x3> of the
// 3-isogeny with kernel x3 = x(P_3), P_3 of exact order 3, together with the
// isogeny value needed to evaluate it. Uses the identity
// 18X^2Z^2 - 27X^4 = 9X^2(2Z^2-3X^2) to shave multiplications.
func ComputeThree(x3 *curve.Point) (curve.Params, ThreeIsogeny, error) {
	if x3.Z.IsZero() {
		return curve.Params{}, ThreeIsogeny{}, ErrDegenerateKernel
	}
	var codomain curve.Params
	phi := ThreeIsogeny{x: x3.X, z: x3.Z}

	var v0, v1, v2, v3 gf.Fp2
	v1.Square(&x3.X)               // X^2
	v0.Add(&v1, &v1).Add(&v1, &v0) // 3X^2
	v1.Add(&v0, &v0).Add(&v1, &v0) // 9X^2
	v2.Square(&x3.Z)               // Z^2
	v3.Square(&v2)                 // Z^4
	v2.Add(&v2, &v2)               // 2Z^2
	v0.Sub(&v2, &v0)                // 2Z^2 - 3X^2
	v1.Mul(&v1, &v0)                // 9X^2(2Z^2-3X^2)
	v0.Mul(&x3.X, &x3.Z)            // XZ
	v0.Add(&v0, &v0)                // 2XZ
	codomain.A.Add(&v3, &v1)        // Z^4 + 9X^2(2Z^2-3X^2)
	codomain.C.Mul(&v0, &v2)        // 4XZ^3

	if codomain.C.IsZero() {
		return curve.Params{}, ThreeIsogeny{}, ErrDegenerateKernel
	}
	return codomain, phi, nil
}

// Eval computes x(phi(P)) for a point xP on the domain curve.
func (phi *ThreeIsogeny) Eval(xP *curve.Point) curve.Point {
	var xQ curve.Point
	var t0, t1, t2 gf.Fp2
	t0.Mul(&phi.x, &xP.X)
	t1.Mul(&phi.z, &xP.Z)
	t2.Sub(&t0, &t1)
	t0.Mul(&phi.z, &xP.X)
	t1.Mul(&phi.x, &xP.Z)
	t0.Sub(&t0, &t1)
	t2.Square(&t2)
	t0.Square(&t0)
	xQ.X.Mul(&t2, &xP.X)
	xQ.Z.Mul(&t0, &xP.Z)
	return xQ
}

// FourIsogeny holds the data needed to evaluate a generic 4-isogeny, i.e.
// one whose kernel does not lie over (1:...) on the base curve; see
// FirstFourIsogeny for that exceptional case.
type FourIsogeny struct {
	xSqPlusZSq, xSqMinusZSq, xz2, xPow4, zPow4 gf.Fp2
}

// ComputeFour derives the codomain of the 4-isogeny with kernel x4 = x(P_4),
// P_4 of exact order 4, together with the evaluation constants.
func ComputeFour(x4 *curve.Point) (curve.Params, FourIsogeny, error) {
	if x4.Z.IsZero() {
		return curve.Params{}, FourIsogeny{}, ErrDegenerateKernel
	}
	var codomain curve.Params
	var phi FourIsogeny
	var v0, v1 gf.Fp2
	v0.Square(&x4.X)
	v1.Square(&x4.Z)
	phi.xSqPlusZSq.Add(&v0, &v1)
	phi.xSqMinusZSq.Sub(&v0, &v1)
	phi.xz2.Add(&x4.X, &x4.Z)
	phi.xz2.Square(&phi.xz2)
	phi.xz2.Sub(&phi.xz2, &phi.xSqPlusZSq)
	phi.xPow4.Square(&v0)
	phi.zPow4.Square(&v1)
	v0.Add(&phi.xPow4, &phi.xPow4)
	v0.Sub(&v0, &phi.zPow4)
	codomain.A.Add(&v0, &v0)
	codomain.C = phi.zPow4

	if codomain.C.IsZero() {
		return curve.Params{}, FourIsogeny{}, ErrDegenerateKernel
	}
	return codomain, phi, nil
}

// Eval computes x(phi(P)), adapting the MSR "compute Xprime, Zprime scaled
// by a common 16(X4+Z4)(X4-Z4)X4^2*Z4^4 factor" strategy from
// Costello-Longa-Naehrig formula (7).
func (phi *FourIsogeny) Eval(xP *curve.Point) curve.Point {
	var xQ curve.Point
	var t0, t1, t2 gf.Fp2

	t0.Mul(&xP.X, &phi.xz2)
	t1.Mul(&xP.Z, &phi.xSqPlusZSq)
	t0.Sub(&t0, &t1)
	t1.Mul(&xP.Z, &phi.xSqMinusZSq)
	t2.Sub(&t0, &t1).Square(&t2)
	t0.Mul(&t0, &t1).Add(&t0, &t0).Add(&t0, &t0)
	t1.Add(&t0, &t2)
	t0.Mul(&t0, &t2)
	xQ.Z.Mul(&t0, &phi.zPow4)
	t2.Mul(&t2, &phi.zPow4)
	t0.Mul(&t1, &phi.xPow4)
	t0.Sub(&t2, &t0)
	xQ.X.Mul(&t1, &t0)

	return xQ
}

// FirstFourIsogeny is the exceptional first 4-isogeny step taken from the
// SIDH base curve: the generic ComputeFour/FourIsogeny.Eval formulas assume
// (1:...) is not in the kernel, which fails for the base curve's 4-torsion.
type FirstFourIsogeny struct {
	A, C gf.Fp2
}

// ComputeFirstFour computes the codomain of the special first 4-isogeny
// from domain, and the constants needed to evaluate it. Must not be merged
// into the generic per-row loop: it absorbs the base-curve's j=1728
// oddity, after which the walk is uniform.
func ComputeFirstFour(domain *curve.Params) (curve.Params, FirstFourIsogeny) {
	var codomain curve.Params
	var isogeny FirstFourIsogeny
	var t0, t1 gf.Fp2

	t0.Add(&domain.C, &domain.C) // 2C
	codomain.C.Sub(&domain.A, &t0)
	t1.Add(&t0, &t0) // 4C
	t1.Add(&t1, &t0) // 6C
	t0.Add(&t1, &domain.A)
	codomain.A.Add(&t0, &t0)

	isogeny.A = domain.A
	isogeny.C = domain.C
	return codomain, isogeny
}

// Eval computes x(phi(P)) under the special first 4-isogeny.
func (phi *FirstFourIsogeny) Eval(xP *curve.Point) curve.Point {
	var xQ curve.Point
	var t0, t1, t2, t3 gf.Fp2

	t0.Add(&xP.X, &xP.Z).Square(&t0)
	t2.Mul(&xP.X, &xP.Z)
	t1.Add(&t2, &t2)
	t1.Sub(&t0, &t1)
	xQ.X.Mul(&phi.A, &t2)
	t3.Mul(&phi.C, &t1)
	xQ.X.Add(&xQ.X, &t3)
	xQ.X.Mul(&xQ.X, &t0)
	t0.Sub(&xP.X, &xP.Z).Square(&t0)
	t0.Mul(&t0, &t2)
	t1.Add(&phi.C, &phi.C)
	t1.Sub(&t1, &phi.A)
	xQ.Z.Mul(&t1, &t0)

	return xQ
}
