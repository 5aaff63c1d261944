package sidhparams

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadToyParams(t *testing.T) {
	p, err := Load("testdata/toy.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.AliceDepth() != 2 {
		t.Errorf("AliceDepth() = %d, want 2", p.AliceDepth())
	}
	if p.BobDepth() != 3 {
		t.Errorf("BobDepth() = %d, want 3", p.BobDepth())
	}
	if len(p.AliceStrategy) != 1 || len(p.BobStrategy) != 2 {
		t.Errorf("unexpected strategy lengths: alice=%d bob=%d", len(p.AliceStrategy), len(p.BobStrategy))
	}
	if p.XPA.IsZero() {
		t.Errorf("XPA should not be zero")
	}
}

const validToy = `
prime = "431"
e_a = 4
e_b = 3
x_pa = "3"
y_pa = "57"
x_pb = "9"
y_pb = "83"
alice_strategy = [0]
bob_strategy = [1, 1]
`

func TestDecodeValid(t *testing.T) {
	if _, err := Decode(validToy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeRejectsNonPrimeModulus(t *testing.T) {
	bad := strings.Replace(validToy, `prime = "431"`, `prime = "432"`, 1)
	_, err := Decode(bad)
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestDecodeRejectsOddEA(t *testing.T) {
	bad := strings.Replace(validToy, "e_a = 4", "e_a = 5", 1)
	_, err := Decode(bad)
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestDecodeRejectsWrongStrategyLength(t *testing.T) {
	bad := strings.Replace(validToy, "bob_strategy = [1, 1]", "bob_strategy = [1]", 1)
	_, err := Decode(bad)
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestDecodeRejectsZeroCoordinate(t *testing.T) {
	bad := strings.Replace(validToy, `x_pa = "3"`, `x_pa = "0"`, 1)
	_, err := Decode(bad)
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("not valid toml {{{"); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}
