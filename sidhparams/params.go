// Package sidhparams loads and validates the domain parameter table an SIDH
// exchange runs over: the prime, the two parties' torsion bases, and their
// precomputed optimal-strategy vectors. Concrete parameter sets for
// standardized primes (p751, p503, p434) are out of scope here; this
// package only defines the table's shape and the validation a table must
// pass before package sidh will use it, the same way the reference
// implementation's parameter arrays are hardcoded but its consumption code
// is generic over them.
package sidhparams

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/BurntSushi/toml"

	"github.com/J08nY/PQCrypto-SIDH/gf"
)

// ErrMalformedInput reports a parameter table that fails to parse or fails
// structural validation (wrong strategy length, non-prime modulus, odd eA,
// zero torsion coordinate).
var ErrMalformedInput = errors.New("sidhparams: malformed parameter table")

// Params is a validated SIDH domain parameter set.
type Params struct {
	Field *gf.Field

	// EA, EB are the exponents in p = 2^EA * 3^EB * f - 1: EA must be even,
	// since Alice's walk factors it into eA/2 4-isogeny levels.
	EA, EB int

	// Affine generator coordinates, given as elements of the prime subfield
	// (the reference implementation's torsion generators are always
	// F_p-rational, per the base curve y^2=x^3+x's endomorphism structure).
	// Each party's counterpart basis point Q and the difference Q-P are not
	// stored: they are derived on demand from P alone via the distortion
	// map tau(x,y)=(-x,iy), the same way the reference parameter tables
	// only ever hardcode a single (x,y) generator pair per party.
	XPA, YPA *gf.Fp
	XPB, YPB *gf.Fp

	// AliceStrategy and BobStrategy are the precomputed optimal-strategy
	// vectors package walk consumes; see walk.Fast for their exact length
	// and indexing contract (depth-1 entries each, depth = AliceDepth()/
	// BobDepth()).
	AliceStrategy []int
	BobStrategy   []int
}

// AliceDepth is the walk depth MAX passed to walk.Fast/Simple for Alice's
// side: eA/2, since each generic level of her walk is a 4-isogeny (two
// doublings).
func (p *Params) AliceDepth() int { return p.EA / 2 }

// BobDepth is the walk depth MAX for Bob's side: eB directly, since each
// level is a 3-isogeny (one tripling).
func (p *Params) BobDepth() int { return p.EB }

type rawParams struct {
	Prime         string `toml:"prime"`
	EA            int    `toml:"e_a"`
	EB            int    `toml:"e_b"`
	XPA           string `toml:"x_pa"`
	YPA           string `toml:"y_pa"`
	XPB           string `toml:"x_pb"`
	YPB           string `toml:"y_pb"`
	AliceStrategy []int  `toml:"alice_strategy"`
	BobStrategy   []int  `toml:"bob_strategy"`
}

// Load reads and validates a parameter table from a TOML file at path.
func Load(path string) (*Params, error) {
	var raw rawParams
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return fromRaw(&raw)
}

// Decode validates a parameter table already held as TOML text, e.g. one
// embedded via go:embed or received over a side channel outside this
// package's remit (parameter distribution is explicitly out of scope; see
// the package doc).
func Decode(text string) (*Params, error) {
	var raw rawParams
	if _, err := toml.Decode(text, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return fromRaw(&raw)
}

func fromRaw(raw *rawParams) (*Params, error) {
	p, ok := new(big.Int).SetString(raw.Prime, 10)
	if !ok {
		return nil, fmt.Errorf("%w: prime is not a valid decimal integer", ErrMalformedInput)
	}
	if !p.ProbablyPrime(32) {
		return nil, fmt.Errorf("%w: prime failed a primality check", ErrMalformedInput)
	}
	if raw.EA <= 0 || raw.EA%2 != 0 {
		return nil, fmt.Errorf("%w: e_a must be a positive even integer, got %d", ErrMalformedInput, raw.EA)
	}
	if raw.EB <= 0 {
		return nil, fmt.Errorf("%w: e_b must be positive, got %d", ErrMalformedInput, raw.EB)
	}

	field := gf.NewField(p)

	coords := map[string]string{
		"x_pa": raw.XPA, "y_pa": raw.YPA,
		"x_pb": raw.XPB, "y_pb": raw.YPB,
	}
	elts := make(map[string]*gf.Fp, len(coords))
	for name, dec := range coords {
		v, ok := new(big.Int).SetString(dec, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a valid decimal integer", ErrMalformedInput, name)
		}
		elt := field.Elt(v)
		if elt.IsZero() {
			return nil, fmt.Errorf("%w: %s must be nonzero", ErrMalformedInput, name)
		}
		elts[name] = elt
	}

	params := &Params{
		Field: field,
		EA:    raw.EA,
		EB:    raw.EB,
		XPA:   elts["x_pa"],
		YPA:   elts["y_pa"],
		XPB:   elts["x_pb"],
		YPB:   elts["y_pb"],

		AliceStrategy: raw.AliceStrategy,
		BobStrategy:   raw.BobStrategy,
	}

	if want := params.AliceDepth() - 1; len(params.AliceStrategy) != want {
		return nil, fmt.Errorf("%w: alice_strategy must have length %d, got %d", ErrMalformedInput, want, len(params.AliceStrategy))
	}
	if want := params.BobDepth() - 1; len(params.BobStrategy) != want {
		return nil, fmt.Errorf("%w: bob_strategy must have length %d, got %d", ErrMalformedInput, want, len(params.BobStrategy))
	}
	for _, m := range params.BobStrategy {
		if m <= 0 {
			return nil, fmt.Errorf("%w: bob_strategy entries must be positive", ErrMalformedInput)
		}
	}
	for _, m := range params.AliceStrategy[1:] {
		if m <= 0 {
			return nil, fmt.Errorf("%w: alice_strategy entries must be positive", ErrMalformedInput)
		}
	}

	return params, nil
}
