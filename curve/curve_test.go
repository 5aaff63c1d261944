package curve

import (
	"math/big"
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"

	"github.com/J08nY/PQCrypto-SIDH/gf"
)

// Same SIDH-shape prime as gf/field_test.go and walk/walk_test.go.
var testPrime, _ = new(big.Int).SetString("10354717741769305252977768237866805321427389645549071170116189679054678940682478846502882896561066713624553211618840202385203911976522554393044160468771151816976706840078913334358399730952774926980235086850991501872665651576831", 10)

var testField = gf.NewField(testPrime)

var quickConfig = &quick.Config{MaxCount: 64}

func randNonZeroFp2(r *rand.Rand) *gf.Fp2 {
	for {
		a := new(big.Int).Rand(r, testField.Modulus())
		b := new(big.Int).Rand(r, testField.Modulus())
		v := testField.Elt2(testField.Elt(a), testField.Elt(b))
		if !v.IsZero() {
			return v
		}
	}
}

type pointVal struct{ Point }
type curveVal struct{ Params }

func (pointVal) Generate(r *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(pointVal{Point{X: *randNonZeroFp2(r), Z: *randNonZeroFp2(r)}})
}

func (curveVal) Generate(r *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(curveVal{Params{A: *randNonZeroFp2(r), C: *randNonZeroFp2(r)}})
}

// affineBaseCurve is the standard SIDH starting curve y^2 = x^3 + x, used
// throughout these tests purely as a fixed, well-understood non-singular
// curve - not as a stand-in for any concrete SIDH prime's parameter table.
func affineBaseCurve() Params {
	return Params{A: *testField.Zero2(), C: *testField.One2()}
}

func TestDoubleTripleCommute(t *testing.T) {
	prop := func(p pointVal) bool {
		c := affineBaseCurve()
		cc := c.cache()

		var viaDoubleTriple, viaTripleDouble Point
		var tmp Point
		tmp.Double(&p.Point, &cc)
		viaDoubleTriple.Triple(&tmp, &cc)

		tmp.Triple(&p.Point, &cc)
		viaTripleDouble.Double(&tmp, &cc)

		return viaDoubleTriple.VartimeEq(&viaTripleDouble)
	}
	if err := quick.Check(prop, quickConfig); err != nil {
		t.Error(err)
	}
}

func TestDoubleEMatchesRepeatedDouble(t *testing.T) {
	prop := func(p pointVal) bool {
		c := affineBaseCurve()
		cc := c.cache()

		var viaLoop Point
		viaLoop = p.Point
		for i := 0; i < 5; i++ {
			viaLoop.Double(&viaLoop, &cc)
		}

		var viaE Point
		viaE.DoubleE(&c, &p.Point, 5)

		return viaLoop.VartimeEq(&viaE)
	}
	if err := quick.Check(prop, quickConfig); err != nil {
		t.Error(err)
	}
}

func TestTripleEMatchesRepeatedTriple(t *testing.T) {
	prop := func(p pointVal) bool {
		c := affineBaseCurve()
		cc := c.cache()

		var viaLoop Point
		viaLoop = p.Point
		for i := 0; i < 5; i++ {
			viaLoop.Triple(&viaLoop, &cc)
		}

		var viaE Point
		viaE.TripleE(&c, &p.Point, 5)

		return viaLoop.VartimeEq(&viaE)
	}
	if err := quick.Check(prop, quickConfig); err != nil {
		t.Error(err)
	}
}

// TestAddRecoversDoubleWhenPIsQ checks the differential addition formula
// against the direct doubling formula: x(P+P) computed via Add (with
// xPmQ = x(P-P) = x(infinity) = (1:0)) must equal Double.
func TestAddRecoversDoubleWhenPIsQ(t *testing.T) {
	prop := func(p pointVal) bool {
		c := affineBaseCurve()
		cc := c.cache()

		infinity := Point{X: *testField.One2(), Z: *testField.Zero2()}

		var viaAdd, viaDouble Point
		viaAdd.Add(&p.Point, &p.Point, &infinity)
		viaDouble.Double(&p.Point, &cc)

		return viaAdd.VartimeEq(&viaDouble)
	}
	if err := quick.Check(prop, quickConfig); err != nil {
		t.Error(err)
	}
}

// TestThreePointLadderZero checks that x(P + [0]Q) = x(P): a ladder run over
// an all-zero scalar must return the starting point P unchanged.
func TestThreePointLadderZero(t *testing.T) {
	prop := func(p, q, pmq pointVal) bool {
		c := affineBaseCurve()
		var viaZero Point
		viaZero.ThreePointLadder(&c, &p.Point, &q.Point, &pmq.Point, []byte{0}, 3)
		return viaZero.VartimeEq(&p.Point)
	}
	if err := quick.Check(prop, quickConfig); err != nil {
		t.Error(err)
	}
}

// TestThreePointLadderOne checks x(P + [1]Q) against the differential
// addition formula directly, exercising the ladder's single-bit path.
func TestThreePointLadderOne(t *testing.T) {
	prop := func(p, q, pmq pointVal) bool {
		c := affineBaseCurve()
		var viaLadder, viaAdd Point
		viaLadder.ThreePointLadder(&c, &p.Point, &q.Point, &pmq.Point, []byte{1}, 1)
		viaAdd.Add(&p.Point, &q.Point, &pmq.Point)
		return viaLadder.VartimeEq(&viaAdd)
	}
	if err := quick.Check(prop, quickConfig); err != nil {
		t.Error(err)
	}
}

func TestJInvariantInvariantUnderRescaling(t *testing.T) {
	prop := func(c curveVal, lambda fp2Nonzero) bool {
		if c.Singular() {
			return true
		}
		scaled := Params{}
		scaled.A.Mul(&c.A, lambda.Fp2)
		scaled.C.Mul(&c.C, lambda.Fp2)
		if scaled.Singular() {
			return true
		}

		j1 := c.JInvariant()
		j2 := scaled.JInvariant()
		return j1.VartimeEq(j2)
	}
	if err := quick.Check(prop, quickConfig); err != nil {
		t.Error(err)
	}
}

type fp2Nonzero struct{ *gf.Fp2 }

func (fp2Nonzero) Generate(r *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(fp2Nonzero{randNonZeroFp2(r)})
}

func TestRecoverParamsRoundTrip(t *testing.T) {
	// Three affine x-coordinates chosen on the base curve's Kummer line;
	// RecoverParams should reconstruct a curve isomorphic to the one they
	// actually came from (checked here via matching j-invariant, since
	// RecoverParams intentionally returns an unnormalized (A':C') pair).
	c := affineBaseCurve()
	cc := c.cache()

	// P, [2]P, and (([2]P)-P) = P form a trivially consistent
	// (P, Q, Q-P) triple, since Q-P = 2P-P = P exactly.
	p1 := FromAffinePrimeField(testField.EltFromUint64(3))
	var p2 Point
	p2.Double(&p1, &cc)
	p3 := p1

	x1, x2, x3 := p1.ToAffine(), p2.ToAffine(), p3.ToAffine()
	recovered, ok := RecoverParams(x1, x2, x3)
	if !ok {
		t.Fatal("RecoverParams reported inconsistent points")
	}

	got := recovered.JInvariant()
	want := c.JInvariant()
	if !got.VartimeEq(want) {
		t.Errorf("recovered curve has wrong j-invariant")
	}
}

func TestRecoverParamsRejectsDegenerateInput(t *testing.T) {
	zero := testField.Zero2()
	one := testField.One2()
	_, ok := RecoverParams(zero, one, one)
	if ok {
		t.Fatal("expected RecoverParams to reject x1=0 (forces x1*x2*x3=0)")
	}
}

func TestDistortAndDifferenceIsPurelyImaginaryOverReal(t *testing.T) {
	x := testField.EltFromUint64(11)
	p := DistortAndDifference(x)
	if !p.X.A.IsZero() {
		t.Errorf("expected X to be purely imaginary")
	}
	if !p.Z.B.IsZero() {
		t.Errorf("expected Z to be purely real")
	}
}
