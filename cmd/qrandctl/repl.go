package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/corvid-systems/entropic/facade"
)

// runREPL is an interactive shell over a built Context: liner for
// readline-style input and history, a flat command-name switch,
// "exit"/"quit"/"q" to leave.
func runREPL(ctx *facade.Context) int {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyFile()); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	fmt.Println("qrandctl - entropy-amplification engine shell")
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		input, err := line.Prompt("qrandctl> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")

				break
			}

			fmt.Fprintln(os.Stderr, "error reading input:", err)

			return 1
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		fields := strings.Fields(input)
		cmd, args := strings.ToLower(fields[0]), fields[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			saveHistory(line)

			return 0
		case "help", "?":
			printREPLHelp()
		case "get-randomness":
			replGetRandomness(ctx, args)
		case "stats":
			replStats(ctx)
		case "destroy":
			if err := ctx.Destroy(); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			} else {
				fmt.Println("context destroyed")
			}
		default:
			fmt.Printf("unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	saveHistory(line)

	return 0
}

func printREPLHelp() {
	fmt.Println("Commands:")
	fmt.Println("  get-randomness <n>   Request n bytes and hex-dump them")
	fmt.Println("  stats                Show last error code/description and license data")
	fmt.Println("  destroy              Destroy the context (idempotent)")
	fmt.Println("  help                 Show this help")
	fmt.Println("  exit / quit / q      Exit")
}

func replGetRandomness(ctx *facade.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: get-randomness <n>")

		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		fmt.Fprintln(os.Stderr, "invalid byte count:", args[0])

		return
	}

	out, err := ctx.GetRandomness(context.Background(), n)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)

		return
	}

	fmt.Print(hex.Dump(out))
}

func replStats(ctx *facade.Context) {
	fmt.Printf("last_error_code:        %d (%s)\n", ctx.LastErrorCode(), ctx.LastErrorCode())
	fmt.Printf("last_error_description: %q\n", ctx.LastErrorDescription())
	fmt.Printf("license_data:           %q\n", ctx.LicenseData())
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".qrandctl_history")
}

func saveHistory(line *liner.State) {
	path := historyFile()
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}
