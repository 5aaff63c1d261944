package sidh

import "errors"

// ErrMalformedInput covers a secret outside its declared order, a strategy
// of the wrong length or shape, or any other structurally invalid input
// caught at the boundary before a walk is attempted.
var ErrMalformedInput = errors.New("sidh: malformed input")

// ErrInvalidPublicKey covers a peer public key whose three x-coordinates are
// not consistent with any Montgomery curve (curve.RecoverParams failing),
// a recovered curve that is singular, or a kernel point that degenerates
// mid-walk - all symptoms of a corrupted or adversarial peer key rather than
// a caller mistake.
var ErrInvalidPublicKey = errors.New("sidh: invalid public key")

// ErrFieldZeroDivision indicates the final 3-way simultaneous inversion in
// KeygenFast/KeygenSimple hit a zero denominator: an internal invariant
// violation (a well-formed walk never leaves a pushed point at Z=0), not a
// caller-correctable condition.
var ErrFieldZeroDivision = errors.New("sidh: field zero division")
