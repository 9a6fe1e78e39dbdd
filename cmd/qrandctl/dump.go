package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/corvid-systems/entropic/facade"
)

// runDump is the qo_hexdump-style diagnostic: request n bytes and print
// them as a hex dump, grounded on the original_source/ sample's minimal
// "get some bytes, show them" utility (SPEC_FULL.md §4.8). It is a plain
// external consumer of the public API, not a core dependency.
func runDump(ctx *facade.Context, args []string) int {
	n := 32

	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 0 {
			fmt.Fprintln(os.Stderr, "invalid byte count:", args[0])

			return 1
		}

		n = parsed
	}

	out, err := ctx.GetRandomness(context.Background(), n)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)

		return 1
	}

	fmt.Print(hex.Dump(out))

	return 0
}
