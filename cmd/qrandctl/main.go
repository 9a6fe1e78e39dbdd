// qrandctl is a sample CLI/REPL over the entropy-amplification façade, for
// manual smoke-testing and diagnostics. It is an external consumer of the
// public API, not part of the core (spec.md §1 lists sample CLIs as
// explicitly out of scope for the core itself).
//
// Usage:
//
//	qrandctl [flags] repl        Interactive shell over a built context
//	qrandctl [flags] dump <n>    Hex-dump n bytes of randomness and exit
//	qrandctl [flags] coinflip    Print heads/tails from one output bit
//
// Flags (building the context):
//
//	--config <file>           Load options from a JSONC config document
//	--node-path <path>        Subtree within --config to read (default: root)
//	--wsr-type <type>         RDSEED | File | Callback (default: RDSEED)
//	--wsr-path <path>         Device/file path when --wsr-type=File
//	--cache-type <type>       None | SyncCaching | Caching | MultiThread
//	--cache-size <n>          Ring buffer size in bytes
//	--cache-prefill <n>       High watermark
//	--cache-refill-at <n>     Low watermark
//	--cache-thread-count <n>  Worker count for MultiThread (0 = GOMAXPROCS)
//	--seed-content-file <f>   Raw seed content bytes (default: evaluation mode)
//	--seed-signature-file <f> Raw seed signature bytes (default: evaluation mode)
//	--license-data <string>   Opaque LICENSE_DATA payload
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("qrandctl", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	cfg := bindFlags(fs)

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}

		return 1
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "usage: qrandctl [flags] <repl|dump|coinflip> [args]")

		return 1
	}

	ctx, err := buildContext(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error building context:", err)

		return 1
	}
	defer ctx.Destroy()

	switch rest[0] {
	case "repl":
		return runREPL(ctx)
	case "dump":
		return runDump(ctx, rest[1:])
	case "coinflip":
		return runCoinflip(ctx)
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", rest[0])

		return 1
	}
}
