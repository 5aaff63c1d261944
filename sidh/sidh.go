// Package sidh wires the field, curve, isogeny, walk, and secret-point
// layers into the four entry points a Supersingular Isogeny Diffie-Hellman
// exchange needs: keygen and shared-secret, each in a strategy-driven "fast"
// form and a canonical "simple" form kept only to check the fast form
// against. Randomness, wire encoding, and concrete parameter tables for
// standardized primes are the caller's concern; this package consumes a
// validated sidhparams.Params and pure Fp2 values throughout.
package sidh

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/J08nY/PQCrypto-SIDH/curve"
	"github.com/J08nY/PQCrypto-SIDH/gf"
	"github.com/J08nY/PQCrypto-SIDH/secretpoint"
	"github.com/J08nY/PQCrypto-SIDH/sidhparams"
	"github.com/J08nY/PQCrypto-SIDH/walk"
)

// Role selects which party's torsion an operation walks: Alice's 4-isogeny
// tree or Bob's 3-isogeny tree.
type Role = walk.Role

const (
	Alice = walk.Alice
	Bob   = walk.Bob
)

// PublicKey is the affine Fp2 triple (x(phi(P)), x(phi(Q)), x(phi(Q-P))) a
// keygen call produces and the counterparty's shared-secret call consumes.
type PublicKey struct {
	X1, X2, X3 gf.Fp2
}

// order returns the declared bound on role's secret scalar (oA = 2^EA for
// Alice, oB = 3^EB for Bob) and the bit length the three-point ladder scans
// the scalar over. Alice's ladder runs exactly EA bits, matching her
// scalar's own bit length once its top bit is set; Bob's runs the exact bit
// length of oB-1, the largest representable scalar, per the resolution the
// source itself suggests for the "party" bit-length constant.
func order(role Role, p *sidhparams.Params) (bound *big.Int, nbits int) {
	if role == Alice {
		bound = new(big.Int).Lsh(big.NewInt(1), uint(p.EA))
		return bound, p.EA
	}
	bound = new(big.Int).Exp(big.NewInt(3), big.NewInt(int64(p.EB)), nil)
	nbits = new(big.Int).Sub(bound, big.NewInt(1)).BitLen()
	return bound, nbits
}

// validateSecret checks secret against role's declared range and, for
// Alice, evenness (her scalar's bottom bit must be 0 so the ladder never
// walks into the base curve's rational 2-torsion).
func validateSecret(role Role, secret *big.Int, p *sidhparams.Params) (nbits int, err error) {
	if secret.Sign() < 1 {
		return 0, fmt.Errorf("%w: secret must be positive", ErrMalformedInput)
	}
	bound, nbits := order(role, p)
	if secret.Cmp(bound) >= 0 {
		return 0, fmt.Errorf("%w: secret out of range for role", ErrMalformedInput)
	}
	if role == Alice && secret.Bit(0) != 0 {
		return 0, fmt.Errorf("%w: alice's secret must be even", ErrMalformedInput)
	}
	return nbits, nil
}

// ownGenerator returns role's own affine generator pair (xP, yP), the basis
// point secret_pt walks from.
func ownGenerator(role Role, p *sidhparams.Params) (xP, yP *gf.Fp) {
	if role == Alice {
		return p.XPA, p.YPA
	}
	return p.XPB, p.YPB
}

// counterpartyX returns the x-coordinate of the other party's generator, the
// single stored value from which the auxiliary push-set triple
// (xQ, x(tau(Q)), x(tau(Q)-Q)) is derived via the base-curve distortion map.
func counterpartyX(role Role, p *sidhparams.Params) *gf.Fp {
	if role == Alice {
		return p.XPB
	}
	return p.XPA
}

// pushSet builds the projective triple (xQ, x(tau(Q)), x(tau(Q)-Q)) for the
// counterparty's generator Q, the three points a keygen call pushes through
// its own walk so the peer can reconstruct the image curve via
// curve.RecoverParams without A ever being transmitted directly.
func pushSet(xQ *gf.Fp) []curve.Point {
	xQProj := curve.FromAffinePrimeField(xQ)
	var negXQ gf.Fp
	negXQ.Neg(xQ)
	xTauQ := curve.FromAffinePrimeField(&negXQ)
	xDiff := curve.DistortAndDifference(xQ)
	return []curve.Point{xQProj, xTauQ, xDiff}
}

// normalize affinely normalizes push, a triple of projective points sharing
// no common denominator, using one Fp2 inversion via gf.Batch3Inv.
func normalize(push []curve.Point) (PublicKey, error) {
	if push[0].Z.IsZero() || push[1].Z.IsZero() || push[2].Z.IsZero() {
		return PublicKey{}, ErrFieldZeroDivision
	}
	inv1, inv2, inv3 := gf.Batch3Inv(&push[0].Z, &push[1].Z, &push[2].Z)
	var pk PublicKey
	pk.X1.Mul(&push[0].X, inv1)
	pk.X2.Mul(&push[1].X, inv2)
	pk.X3.Mul(&push[2].X, inv3)
	return pk, nil
}

// KeygenFast derives role's public key from secret using the strategy-driven
// walk. strategy must have length depth-1; depth is eA/2 for Alice or eB for
// Bob (see sidhparams.Params.AliceDepth/BobDepth).
func KeygenFast(role Role, secret *big.Int, params *sidhparams.Params, strategy []int, depth int) (PublicKey, error) {
	kernel, push, err := deriveKeygenInputs(role, secret, params)
	if err != nil {
		return PublicKey{}, err
	}
	base := curve.Params{A: *params.Field.Zero2(), C: *params.Field.One2()}

	_, pushed, err := walk.Fast(role, base, kernel, push, strategy, depth)
	if err != nil {
		return PublicKey{}, wrapKeygenErr(err)
	}
	return normalize(pushed)
}

// KeygenSimple derives role's public key using the canonical recursion
// instead of a precomputed strategy; depth is taken from params. It exists
// to check KeygenFast against (the "Simple ≡ Fast" property), not for
// production use.
func KeygenSimple(role Role, secret *big.Int, params *sidhparams.Params) (PublicKey, error) {
	kernel, push, err := deriveKeygenInputs(role, secret, params)
	if err != nil {
		return PublicKey{}, err
	}
	base := curve.Params{A: *params.Field.Zero2(), C: *params.Field.One2()}

	depth := depthFor(role, params)
	_, pushed, err := walk.Simple(role, base, kernel, push, depth)
	if err != nil {
		return PublicKey{}, wrapKeygenErr(err)
	}
	return normalize(pushed)
}

func deriveKeygenInputs(role Role, secret *big.Int, params *sidhparams.Params) (curve.Point, []curve.Point, error) {
	nbits, err := validateSecret(role, secret, params)
	if err != nil {
		return curve.Point{}, nil, err
	}
	xOwn, yOwn := ownGenerator(role, params)
	kernel, err := secretpoint.Point(xOwn, yOwn, secret, nbits)
	if err != nil {
		return curve.Point{}, nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	push := pushSet(counterpartyX(role, params))
	return kernel, push, nil
}

func depthFor(role Role, params *sidhparams.Params) int {
	if role == Alice {
		return params.AliceDepth()
	}
	return params.BobDepth()
}

// SharedSecretFast derives the shared j-invariant from role's own secret and
// the counterparty's public key, walking the strategy-driven tree over the
// curve peer.X1, X2, X3 imply.
func SharedSecretFast(role Role, secret *big.Int, peer PublicKey, params *sidhparams.Params, strategy []int, depth int) (*gf.Fp2, error) {
	domain, kernel, nbits, err := recoverDomainAndValidate(role, secret, peer, params)
	if err != nil {
		return nil, err
	}
	_ = nbits

	final, _, err := walk.Fast(role, domain, kernel, nil, strategy, depth)
	if err != nil {
		return nil, wrapSharedSecretErr(err)
	}
	return final.JInvariant(), nil
}

// SharedSecretSimple repeats SharedSecretFast using the canonical recursion,
// deriving depth from params instead of taking a strategy.
func SharedSecretSimple(role Role, secret *big.Int, peer PublicKey, params *sidhparams.Params) (*gf.Fp2, error) {
	domain, kernel, _, err := recoverDomainAndValidate(role, secret, peer, params)
	if err != nil {
		return nil, err
	}

	depth := depthFor(role, params)
	final, _, err := walk.Simple(role, domain, kernel, nil, depth)
	if err != nil {
		return nil, wrapSharedSecretErr(err)
	}
	return final.JInvariant(), nil
}

// recoverDomainAndValidate reconstructs the peer's image curve from their
// public key triple and computes the own-secret kernel point x(P + [k]Q) on
// it, where (P, Q, Q-P) are exactly the three points the peer pushed
// through their own walk.
func recoverDomainAndValidate(role Role, secret *big.Int, peer PublicKey, params *sidhparams.Params) (curve.Params, curve.Point, int, error) {
	nbits, err := validateSecret(role, secret, params)
	if err != nil {
		return curve.Params{}, curve.Point{}, 0, err
	}

	domain, ok := curve.RecoverParams(&peer.X1, &peer.X2, &peer.X3)
	if !ok {
		return curve.Params{}, curve.Point{}, 0, fmt.Errorf("%w: public key coordinates are inconsistent with any Montgomery curve", ErrInvalidPublicKey)
	}
	if domain.Singular() {
		return curve.Params{}, curve.Point{}, 0, fmt.Errorf("%w: recovered curve is singular", ErrInvalidPublicKey)
	}

	xP := curve.FromAffine(&peer.X1)
	xQ := curve.FromAffine(&peer.X2)
	xD := curve.FromAffine(&peer.X3)
	scalar := secretpoint.ScalarBytes(secret, nbits)

	var kernel curve.Point
	kernel.ThreePointLadder(&domain, &xP, &xQ, &xD, scalar, nbits)
	return domain, kernel, nbits, nil
}

// wrapKeygenErr maps a walk-layer error surfaced during keygen: a degenerate
// kernel is reported as ErrInvalidPublicKey, the same as during shared-secret
// derivation; every other walk error is malformed input.
func wrapKeygenErr(err error) error {
	if errors.Is(err, walk.ErrDegenerateWalk) {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedInput, err)
}

// wrapSharedSecretErr maps a walk-layer error surfaced while deriving a
// shared secret: a degenerate kernel there always traces back to the peer's
// public key not being consistent with the curve it claims, so it is
// reclassified as ErrInvalidPublicKey per the error taxonomy.
func wrapSharedSecretErr(err error) error {
	if errors.Is(err, walk.ErrDegenerateWalk) {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedInput, err)
}
