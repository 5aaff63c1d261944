// Package walk implements the strategy-driven De Feo-Jao-Plut isogeny-tree
// traversal at the heart of the SIDH key exchange: starting from a kernel
// point of order ell^depth on a Montgomery curve, it walks down a binary
// tree of ell-isogenies (ell=4 for Alice, ell=3 for Bob), carrying a set of
// auxiliary points along, and emits the final isogenous curve plus the
// images of those auxiliary points.
//
// Two traversal strategies are provided: Fast, which consumes a
// precomputed optimal-strategy vector to keep the working stack at
// O(log depth), and Simple, the canonical multiply-then-isogenize
// recursion used only to check Fast against (see the "Simple ≡ Fast"
// property in the package tests).
package walk

import (
	"errors"
	"fmt"

	"github.com/J08nY/PQCrypto-SIDH/curve"
	"github.com/J08nY/PQCrypto-SIDH/isogeny"
)

// Role selects which torsion Alice (ell=4) or Bob (ell=3) walks.
type Role int

const (
	Alice Role = iota
	Bob
)

// ErrMalformedInput covers structurally invalid walk inputs: a
// non-positive depth, a strategy of the wrong length, or a non-positive or
// over-budget split.
var ErrMalformedInput = errors.New("walk: malformed input")

// ErrDegenerateWalk is surfaced when a kernel point evaluates to the point
// at infinity or to (0:0) partway through the walk. This indicates the
// starting data (typically a peer's public key) was not consistent with the
// role's torsion; callers deriving a shared secret should treat this the
// same as isogeny.ErrDegenerateKernel / an InvalidPublicKey condition.
var ErrDegenerateWalk = errors.New("walk: degenerate kernel point")

func wrapDegenerate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, isogeny.ErrDegenerateKernel) {
		return fmt.Errorf("%w: %v", ErrDegenerateWalk, err)
	}
	return err
}

// isoEval is satisfied by *isogeny.FourIsogeny, *isogeny.ThreeIsogeny, and
// *isogeny.FirstFourIsogeny: the common shape a computed isogeny needs to
// push a point through it.
type isoEval interface {
	Eval(xP *curve.Point) curve.Point
}

// stepFuncs abstracts the one place Alice's and Bob's walks differ: how
// many doublings a split of m levels costs (2m, since a 4-isogeny level is
// two doublings) versus how many triplings (m), and which isogeny formula
// derives a level's codomain.
type stepFuncs struct {
	powE           func(curve *curve.Params, xR *curve.Point, m int) curve.Point
	computeIsogeny func(xR *curve.Point) (curve.Params, isoEval, error)
}

func aliceSteps() stepFuncs {
	return stepFuncs{
		powE: func(c *curve.Params, xR *curve.Point, m int) curve.Point {
			var out curve.Point
			out.DoubleE(c, xR, uint32(2*m))
			return out
		},
		computeIsogeny: func(xR *curve.Point) (curve.Params, isoEval, error) {
			c, phi, err := isogeny.ComputeFour(xR)
			if err != nil {
				return curve.Params{}, nil, err
			}
			return c, &phi, nil
		},
	}
}

func bobSteps() stepFuncs {
	return stepFuncs{
		powE: func(c *curve.Params, xR *curve.Point, m int) curve.Point {
			var out curve.Point
			out.TripleE(c, xR, uint32(m))
			return out
		},
		computeIsogeny: func(xR *curve.Point) (curve.Params, isoEval, error) {
			c, phi, err := isogeny.ComputeThree(xR)
			if err != nil {
				return curve.Params{}, nil, err
			}
			return c, &phi, nil
		},
	}
}

// genericMax is the number of ell-isogeny levels the strategy-driven loop
// itself walks: all of them for Bob, and depth-1 for Alice, since her
// special first 4-isogeny (see isogeny.FirstFourIsogeny) accounts for one
// level outside the generic loop.
func genericMax(role Role, depth int) int {
	if role == Alice {
		return depth - 1
	}
	return depth
}

// splitFunc returns an accessor mapping the strategy's remaining-budget
// index k to a split value, validating strategy's length against depth
// per the external contract (length depth-1 for both roles) along the way.
//
// The two roles address the same depth-1-length vector differently because
// Alice's preamble isogeny shifts her generic loop's own natural index
// range down by one level relative to Bob's. Bob's loop runs max = depth
// levels, so the budgets k it asks for lie in [1, depth-1] and are read
// from strategy[k-1]: the vector is used in full. Alice's loop runs
// max = depth-1 levels, so its budgets lie in [1, depth-2] and are read
// from strategy[k]: position 0 is a structurally unused slot, mirroring the
// reference implementation's own array layout.
func splitFunc(role Role, depth int, strategy []int) (func(k int) (int, error), error) {
	if depth-1 != len(strategy) {
		return nil, fmt.Errorf("%w: strategy must have length depth-1=%d, got %d", ErrMalformedInput, depth-1, len(strategy))
	}
	max := genericMax(role, depth)
	switch role {
	case Alice:
		return func(k int) (int, error) {
			if k <= 0 || k >= max || k >= len(strategy) {
				return 0, fmt.Errorf("%w: strategy index %d out of range", ErrMalformedInput, k)
			}
			return strategy[k], nil
		}, nil
	default:
		return func(k int) (int, error) {
			if k <= 0 || k > len(strategy) {
				return 0, fmt.Errorf("%w: strategy index %d out of range", ErrMalformedInput, k)
			}
			return strategy[k-1], nil
		}, nil
	}
}

type stackEntry struct {
	point curve.Point
	index int
}

// runFast performs the strategy-driven traversal over exactly max ell-
// isogeny levels, starting from kernel candidate xR of order ell^max,
// pushing push through every level along the way.
func runFast(base curve.Params, xR curve.Point, push []curve.Point, max int, split func(int) (int, error), step stepFuncs) (curve.Params, []curve.Point, error) {
	current := base
	stack := make([]stackEntry, 0, max)
	i := 0

	for row := 1; row < max; row++ {
		for i < max-row {
			stack = append(stack, stackEntry{point: xR, index: i})
			k := max - i - row
			m, err := split(k)
			if err != nil {
				return curve.Params{}, nil, err
			}
			if m <= 0 || m > k {
				return curve.Params{}, nil, fmt.Errorf("%w: split %d out of range [1,%d] at budget %d", ErrMalformedInput, m, k, k)
			}
			xR = step.powE(&current, &xR, m)
			i += m
		}

		newCurve, phi, err := step.computeIsogeny(&xR)
		if err != nil {
			return curve.Params{}, nil, wrapDegenerate(err)
		}
		current = newCurve

		for idx := range stack {
			stack[idx].point = phi.Eval(&stack[idx].point)
		}
		for idx := range push {
			push[idx] = phi.Eval(&push[idx])
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		xR, i = top.point, top.index
	}

	newCurve, phi, err := step.computeIsogeny(&xR)
	if err != nil {
		return curve.Params{}, nil, wrapDegenerate(err)
	}
	current = newCurve
	for idx := range push {
		push[idx] = phi.Eval(&push[idx])
	}

	return current, push, nil
}

// runSimple performs the canonical multiply-then-isogenize recursion:
// descend the order exponent from max to 1 one level at a time, deriving
// and applying an isogeny at each level. This is the O(max^2)-multiplication
// reference the Fast traversal is checked against; see the package tests
// for the "simple equals fast" property.
func runSimple(base curve.Params, xR curve.Point, push []curve.Point, max int, step stepFuncs) (curve.Params, []curve.Point, error) {
	current := base
	remaining := max

	for remaining > 1 {
		kernel := step.powE(&current, &xR, remaining-1)
		newCurve, phi, err := step.computeIsogeny(&kernel)
		if err != nil {
			return curve.Params{}, nil, wrapDegenerate(err)
		}
		current = newCurve
		xR = phi.Eval(&xR)
		for idx := range push {
			push[idx] = phi.Eval(&push[idx])
		}
		remaining--
	}

	newCurve, phi, err := step.computeIsogeny(&xR)
	if err != nil {
		return curve.Params{}, nil, wrapDegenerate(err)
	}
	current = newCurve
	for idx := range push {
		push[idx] = phi.Eval(&push[idx])
	}

	return current, push, nil
}

func stepsFor(role Role) stepFuncs {
	if role == Alice {
		return aliceSteps()
	}
	return bobSteps()
}

// clonePoints returns a fresh copy of push so callers' slices are never
// mutated in place.
func clonePoints(push []curve.Point) []curve.Point {
	out := make([]curve.Point, len(push))
	copy(out, push)
	return out
}

// Fast walks depth ell-isogeny levels from base using the strategy vector,
// returning the final curve and the images of push. For Alice (ell=4) it
// first applies the special first 4-isogeny to xR and to every point in
// push, per the base-curve preamble described in the package doc.
func Fast(role Role, base curve.Params, xR curve.Point, push []curve.Point, strategy []int, depth int) (curve.Params, []curve.Point, error) {
	if depth <= 0 {
		return curve.Params{}, nil, fmt.Errorf("%w: depth must be positive", ErrMalformedInput)
	}
	push = clonePoints(push)

	if role == Alice {
		firstCurve, firstPhi := isogeny.ComputeFirstFour(&base)
		base = firstCurve
		xR = firstPhi.Eval(&xR)
		for idx := range push {
			push[idx] = firstPhi.Eval(&push[idx])
		}
	}

	max := genericMax(role, depth)
	if max <= 0 {
		// Alice with depth==1 has no generic levels at all; nothing further
		// to walk (the preamble alone already produced the final curve).
		return base, push, nil
	}

	split, err := splitFunc(role, depth, strategy)
	if err != nil {
		return curve.Params{}, nil, err
	}

	if max <= 1 {
		newCurve, phi, err := stepsFor(role).computeIsogeny(&xR)
		if err != nil {
			return curve.Params{}, nil, wrapDegenerate(err)
		}
		for idx := range push {
			push[idx] = phi.Eval(&push[idx])
		}
		return newCurve, push, nil
	}

	return runFast(base, xR, push, max, split, stepsFor(role))
}

// Simple walks the same depth ell-isogeny levels as Fast, using the
// canonical recursion instead of a precomputed strategy. It exists to
// verify Fast's output, not for production use: it costs O(depth^2) field
// multiplications where Fast costs O(depth log depth).
func Simple(role Role, base curve.Params, xR curve.Point, push []curve.Point, depth int) (curve.Params, []curve.Point, error) {
	if depth <= 0 {
		return curve.Params{}, nil, fmt.Errorf("%w: depth must be positive", ErrMalformedInput)
	}
	push = clonePoints(push)

	if role == Alice {
		firstCurve, firstPhi := isogeny.ComputeFirstFour(&base)
		base = firstCurve
		xR = firstPhi.Eval(&xR)
		for idx := range push {
			push[idx] = firstPhi.Eval(&push[idx])
		}
	}

	max := genericMax(role, depth)
	if max <= 0 {
		return base, push, nil
	}

	return runSimple(base, xR, push, max, stepsFor(role))
}
