// Package gf implements the arithmetic substrate of the isogeny engine: the
// prime field F_p for a caller-supplied SIDH prime p, and its quadratic
// extension F_{p^2} = F_p[i]/(i^2+1).
//
// Every public value flowing through the walk engine is an Fp2 element;
// PrimeField elements only appear on the caller's own starting curve, where
// the torsion-basis x-coordinates happen to be F_p-rational (see
// curve.FromAffinePrimeField, which lifts them into Fp2 points).
//
// Unlike the fixed-prime, hand-tuned Montgomery arithmetic this package is
// modeled on, the modulus here is a runtime parameter (see DESIGN.md for why
// that rules out a constant-time limb implementation): Fp and Fp2 wrap
// math/big and reduce modulo whatever prime the caller registers via
// NewField. Two elements may only be combined if they share the same *Field.
package gf

import "math/big"

// Field is the coefficient domain shared by every element derived from it.
type Field struct {
	p       *big.Int
	byteLen int
}

// NewField returns F_p for the given prime p. It does not verify primality;
// that is the caller's responsibility (see the sidhparams package, which
// validates parameter tables before constructing a Field from them).
func NewField(p *big.Int) *Field {
	if p == nil || p.Sign() <= 0 {
		panic("gf: modulus must be positive")
	}
	f := &Field{p: new(big.Int).Set(p)}
	f.byteLen = (f.p.BitLen() + 7) / 8
	return f
}

// Modulus returns a copy of the field's prime.
func (f *Field) Modulus() *big.Int { return new(big.Int).Set(f.p) }

// ByteLen is the number of bytes needed to hold an element in [0, p).
func (f *Field) ByteLen() int { return f.byteLen }

func (f *Field) reduce(v *big.Int) {
	v.Mod(v, f.p)
}

func sameField(a, b *Field) {
	if a != b {
		panic("gf: operands belong to different fields")
	}
}

//------------------------------------------------------------------------------
// Prime field F_p
//------------------------------------------------------------------------------

// Fp is an element of F_p, held reduced in [0, p).
type Fp struct {
	f *Field
	v big.Int
}

// Zero returns the additive identity of f.
func (f *Field) Zero() *Fp { return &Fp{f: f} }

// One returns the multiplicative identity of f.
func (f *Field) One() *Fp {
	e := &Fp{f: f}
	e.v.SetInt64(1)
	return e
}

// Elt builds an element of f from an arbitrary big.Int, reducing it mod p.
func (f *Field) Elt(x *big.Int) *Fp {
	e := &Fp{f: f}
	e.v.Set(x)
	f.reduce(&e.v)
	return e
}

// EltFromUint64 builds a small element of f.
func (f *Field) EltFromUint64(x uint64) *Fp {
	e := &Fp{f: f}
	e.v.SetUint64(x)
	f.reduce(&e.v)
	return e
}

// Field returns the field this element belongs to.
func (x *Fp) Field() *Field { return x.f }

// BigInt returns a copy of the element's representative in [0, p).
func (x *Fp) BigInt() *big.Int { return new(big.Int).Set(&x.v) }

// Set copies x into dest.
func (dest *Fp) Set(x *Fp) *Fp {
	dest.f = x.f
	dest.v.Set(&x.v)
	return dest
}

// Add sets dest = lhs + rhs. Safe to overlap dest with either operand.
func (dest *Fp) Add(lhs, rhs *Fp) *Fp {
	sameField(lhs.f, rhs.f)
	var t big.Int
	t.Add(&lhs.v, &rhs.v)
	lhs.f.reduce(&t)
	dest.f = lhs.f
	dest.v = t
	return dest
}

// Sub sets dest = lhs - rhs. Safe to overlap dest with either operand.
func (dest *Fp) Sub(lhs, rhs *Fp) *Fp {
	sameField(lhs.f, rhs.f)
	var t big.Int
	t.Sub(&lhs.v, &rhs.v)
	lhs.f.reduce(&t)
	dest.f = lhs.f
	dest.v = t
	return dest
}

// Neg sets dest = -x.
func (dest *Fp) Neg(x *Fp) *Fp {
	var t big.Int
	t.Neg(&x.v)
	x.f.reduce(&t)
	dest.f = x.f
	dest.v = t
	return dest
}

// Mul sets dest = lhs * rhs. Safe to overlap dest with either operand.
func (dest *Fp) Mul(lhs, rhs *Fp) *Fp {
	sameField(lhs.f, rhs.f)
	var t big.Int
	t.Mul(&lhs.v, &rhs.v)
	lhs.f.reduce(&t)
	dest.f = lhs.f
	dest.v = t
	return dest
}

// Square sets dest = x * x.
func (dest *Fp) Square(x *Fp) *Fp {
	return dest.Mul(x, x)
}

// Inv sets dest = 1/x. Panics with a FieldZeroDivision-class error if x is
// zero: inversion of zero is an internal invariant violation, never a
// reachable state for well-formed callers (see walk.ErrDegenerateWalk, which
// is what a zero kernel coordinate should surface as instead).
func (dest *Fp) Inv(x *Fp) *Fp {
	if x.v.Sign() == 0 {
		panic("gf: inversion of zero field element")
	}
	var t big.Int
	t.ModInverse(&x.v, x.f.p)
	dest.f = x.f
	dest.v = t
	return dest
}

// IsZero reports whether x is the additive identity.
func (x *Fp) IsZero() bool { return x.v.Sign() == 0 }

// VartimeEq reports whether x == y. Takes variable time.
func (x *Fp) VartimeEq(y *Fp) bool {
	sameField(x.f, y.f)
	return x.v.Cmp(&y.v) == 0
}

// ConditionalSwap swaps x and y in place if choice is nonzero.
//
// The underlying big.Int arithmetic in this package is not constant-time
// (see the package doc and DESIGN.md), so this only preserves the shape of
// a constant-time swap; it does not itself close the timing side channel.
// It is kept because the walk engine's ladder logic is structured around
// unconditional swap-then-operate, and a future fixed-limb backend can drop
// in behind the same call sites.
func ConditionalSwap(x, y *Fp, choice bool) {
	if choice {
		x.v, y.v = y.v, x.v
	}
}

// ToBytes encodes x as little-endian bytes into a buffer of exactly
// x.Field().ByteLen() bytes.
func (x *Fp) ToBytes(out []byte) {
	n := x.f.ByteLen()
	if len(out) != n {
		panic("gf: output buffer has wrong length")
	}
	for i := range out {
		out[i] = 0
	}
	b := x.v.Bytes() // big-endian, no leading zeros
	for i := 0; i < len(b); i++ {
		out[i] = b[len(b)-1-i]
	}
}

// FromBytes decodes a little-endian encoding produced by ToBytes.
func (f *Field) FromBytes(in []byte) *Fp {
	if len(in) != f.ByteLen() {
		panic("gf: input buffer has wrong length")
	}
	be := make([]byte, len(in))
	for i := range in {
		be[i] = in[len(in)-1-i]
	}
	var v big.Int
	v.SetBytes(be)
	return f.Elt(&v)
}

//------------------------------------------------------------------------------
// Extension field F_{p^2} = F_p[i]/(i^2+1)
//------------------------------------------------------------------------------

// Fp2 represents a0 + a1*i, i^2 = -1.
type Fp2 struct {
	f    *Field
	A, B Fp
}

// Zero2 returns the additive identity of F_{p^2}.
func (f *Field) Zero2() *Fp2 {
	return &Fp2{f: f, A: Fp{f: f}, B: Fp{f: f}}
}

// One2 returns the multiplicative identity of F_{p^2}.
func (f *Field) One2() *Fp2 {
	e := f.Zero2()
	e.A.v.SetInt64(1)
	return e
}

// Elt2 builds an Fp2 element from two prime-field components.
func (f *Field) Elt2(a0, a1 *Fp) *Fp2 {
	return &Fp2{f: f, A: *a0, B: *a1}
}

// FromPrimeField embeds x as the real (i^0) component.
func (f *Field) FromPrimeField(x *Fp) *Fp2 {
	e := f.Zero2()
	e.A = *x
	return e
}

func (x *Fp2) Field() *Field { return x.f }

// Set copies x into dest.
func (dest *Fp2) Set(x *Fp2) *Fp2 {
	dest.f = x.f
	dest.A.Set(&x.A)
	dest.B.Set(&x.B)
	return dest
}

// Add sets dest = lhs + rhs, componentwise.
func (dest *Fp2) Add(lhs, rhs *Fp2) *Fp2 {
	sameField(lhs.f, rhs.f)
	var a, b Fp
	a.Add(&lhs.A, &rhs.A)
	b.Add(&lhs.B, &rhs.B)
	dest.f, dest.A, dest.B = lhs.f, a, b
	return dest
}

// Sub sets dest = lhs - rhs, componentwise.
func (dest *Fp2) Sub(lhs, rhs *Fp2) *Fp2 {
	sameField(lhs.f, rhs.f)
	var a, b Fp
	a.Sub(&lhs.A, &rhs.A)
	b.Sub(&lhs.B, &rhs.B)
	dest.f, dest.A, dest.B = lhs.f, a, b
	return dest
}

// Neg sets dest = -x.
func (dest *Fp2) Neg(x *Fp2) *Fp2 {
	zero := x.f.Zero2()
	return dest.Sub(zero, x)
}

// Mul sets dest = lhs * rhs using Karatsuba: (a+bi)(c+di) = (ac-bd) +
// ((b-a)(c-d) + ac + bd)i, saving one prime-field multiplication over the
// schoolbook formula.
func (dest *Fp2) Mul(lhs, rhs *Fp2) *Fp2 {
	sameField(lhs.f, rhs.f)
	a, b, c, d := &lhs.A, &lhs.B, &rhs.A, &rhs.B

	var ac, bd Fp
	ac.Mul(a, c)
	bd.Mul(b, d)

	var bMinusA, cMinusD Fp
	bMinusA.Sub(b, a)
	cMinusD.Sub(c, d)

	var adPlusBc Fp
	adPlusBc.Mul(&bMinusA, &cMinusD)
	adPlusBc.Add(&adPlusBc, &ac)
	adPlusBc.Add(&adPlusBc, &bd)

	var acMinusBd Fp
	acMinusBd.Sub(&ac, &bd)

	dest.f = lhs.f
	dest.A = acMinusBd
	dest.B = adPlusBc
	return dest
}

// Square sets dest = x*x using (a+bi)^2 = (a^2-b^2) + 2abi.
func (dest *Fp2) Square(x *Fp2) *Fp2 {
	a, b := &x.A, &x.B
	var aPlusB, aMinusB, twoAB Fp
	aPlusB.Add(a, b)
	aMinusB.Sub(a, b)
	twoAB.Add(a, a).Mul(&twoAB, b)

	var aSqMinusBSq Fp
	aSqMinusBSq.Mul(&aPlusB, &aMinusB)

	dest.f = x.f
	dest.A = aSqMinusBSq
	dest.B = twoAB
	return dest
}

// Inv sets dest = 1/x = (a-bi)/(a^2+b^2). Panics on x == 0.
func (dest *Fp2) Inv(x *Fp2) *Fp2 {
	a, b := &x.A, &x.B
	var normInv, asq, bsq Fp
	asq.Square(a)
	bsq.Square(b)
	asq.Add(&asq, &bsq) // a^2 + b^2
	normInv.Inv(&asq)

	var negB Fp
	negB.Neg(b)

	dest.f = x.f
	dest.A.Mul(a, &normInv)
	dest.B.Mul(&negB, &normInv)
	return dest
}

// IsZero reports whether x is the additive identity.
func (x *Fp2) IsZero() bool { return x.A.IsZero() && x.B.IsZero() }

// VartimeEq reports whether x == y. Takes variable time.
func (x *Fp2) VartimeEq(y *Fp2) bool {
	return x.A.VartimeEq(&y.A) && x.B.VartimeEq(&y.B)
}

// ConditionalSwap2 swaps x and y in place if choice is nonzero. See the Fp
// method of the same name for the constant-time caveat.
func ConditionalSwap2(x, y *Fp2, choice bool) {
	ConditionalSwap(&x.A, &y.A, choice)
	ConditionalSwap(&x.B, &y.B, choice)
}

// Batch3Inv computes (1/z1, 1/z2, 1/z3) using Montgomery's simultaneous
// inversion trick: one field inversion (of z1*z2*z3) plus five
// multiplications back-distribute to give all three reciprocals. This is
// the only inversion the walk engine performs; every other operation in the
// isogeny walk stays in projective (X:Z) form specifically to defer it here.
//
// All of z1, z2, z3 must be nonzero; this is undefined (and will panic
// inside Fp2.Inv) otherwise. See gf.Fp.Inv for the zero-division panic.
func Batch3Inv(z1, z2, z3 *Fp2) (y1, y2, y3 *Fp2) {
	var z1z2, z1z2z3 Fp2
	z1z2.Mul(z1, z2)
	z1z2z3.Mul(&z1z2, z3)

	var inv Fp2
	inv.Inv(&z1z2z3)

	y1 = new(Fp2).Mul(&inv, z2)
	y1.Mul(y1, z3)
	y2 = new(Fp2).Mul(&inv, z1)
	y2.Mul(y2, z3)
	y3 = new(Fp2).Mul(&inv, &z1z2)
	return
}

// ToBytes encodes x as two little-endian, fixed-width components:
// A then B, each x.Field().ByteLen() bytes long.
func (x *Fp2) ToBytes(out []byte) {
	n := x.f.ByteLen()
	if len(out) != 2*n {
		panic("gf: output buffer has wrong length")
	}
	x.A.ToBytes(out[:n])
	x.B.ToBytes(out[n:])
}

// FromBytes2 decodes an encoding produced by Fp2.ToBytes.
func (f *Field) FromBytes2(in []byte) *Fp2 {
	n := f.ByteLen()
	if len(in) != 2*n {
		panic("gf: input buffer has wrong length")
	}
	a := f.FromBytes(in[:n])
	b := f.FromBytes(in[n:])
	return f.Elt2(a, b)
}
