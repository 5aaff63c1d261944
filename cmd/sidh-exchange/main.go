// Command sidh-exchange runs one full SIDH key exchange over a parameter
// table given on the command line, using the fast strategy-driven walk for
// both keygens and both shared secrets, and reports whether the two
// parties' j-invariants agree - the "symmetry of exchange" property,
// exercised end to end. Secret generation is out of this program's scope, per the
// core's own non-goals; secrets are supplied directly on the command line.
package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/jedisct1/dlog"

	"github.com/J08nY/PQCrypto-SIDH/sidh"
	"github.com/J08nY/PQCrypto-SIDH/sidhparams"
)

func main() {
	dlog.Init("sidh-exchange", dlog.SeverityNotice, "DAEMON")

	paramsPath := flag.String("params", "", "path to a TOML SIDH parameter table")
	aliceSecret := flag.String("alice-secret", "2", "Alice's secret scalar, decimal, even, < 2^eA")
	bobSecret := flag.String("bob-secret", "1", "Bob's secret scalar, decimal, < 3^eB")
	flag.Parse()

	if *paramsPath == "" {
		dlog.Fatal("-params is required")
	}

	params, err := sidhparams.Load(*paramsPath)
	if err != nil {
		dlog.Fatal(err)
	}
	dlog.Noticef("loaded parameter table from %s", *paramsPath)

	a, ok := new(big.Int).SetString(*aliceSecret, 10)
	if !ok {
		dlog.Fatal("alice-secret is not a valid decimal integer")
	}
	b, ok := new(big.Int).SetString(*bobSecret, 10)
	if !ok {
		dlog.Fatal("bob-secret is not a valid decimal integer")
	}

	if err := run(params, a, b); err != nil {
		dlog.Fatal(err)
	}
}

func run(params *sidhparams.Params, aliceSecret, bobSecret *big.Int) error {
	alicePub, err := sidh.KeygenFast(sidh.Alice, aliceSecret, params, params.AliceStrategy, params.AliceDepth())
	if err != nil {
		return fmt.Errorf("alice keygen: %w", err)
	}
	bobPub, err := sidh.KeygenFast(sidh.Bob, bobSecret, params, params.BobStrategy, params.BobDepth())
	if err != nil {
		return fmt.Errorf("bob keygen: %w", err)
	}
	dlog.Debug("both public keys derived")

	aliceView, err := sidh.SharedSecretFast(sidh.Alice, aliceSecret, bobPub, params, params.AliceStrategy, params.AliceDepth())
	if err != nil {
		return fmt.Errorf("alice shared secret: %w", err)
	}
	bobView, err := sidh.SharedSecretFast(sidh.Bob, bobSecret, alicePub, params, params.BobStrategy, params.BobDepth())
	if err != nil {
		return fmt.Errorf("bob shared secret: %w", err)
	}

	if !aliceView.VartimeEq(bobView) {
		return fmt.Errorf("shared secrets disagree: alice=%v bob=%v", aliceView, bobView)
	}
	dlog.Notice("shared secrets agree")
	fmt.Fprintf(os.Stdout, "j-invariant: %+v\n", aliceView)
	return nil
}
