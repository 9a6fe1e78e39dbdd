package main

import (
	"context"
	"fmt"
	"os"

	"github.com/corvid-systems/entropic/facade"
)

// runCoinflip is a one-bit-from-a-block convenience, grounded on the
// original_source/ sample_code_D_minimal_coinflip.c: request one byte and
// report heads/tails off its low bit (SPEC_FULL.md §4.8).
func runCoinflip(ctx *facade.Context) int {
	out, err := ctx.GetRandomness(context.Background(), 1)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)

		return 1
	}

	if out[0]&1 == 0 {
		fmt.Println("heads")
	} else {
		fmt.Println("tails")
	}

	return 0
}
