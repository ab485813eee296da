/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"

	"github.com/mikeb26/chess-pre/internal"
)

//go:embed help.txt
var helpText string

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, args []string)

// commands maps command names to their respective handler functions.
var commands = map[string]cmdHandler{
	"help":       handleHelp,
	"cpr":        handleCPR,
	"perf":       handlePerf,
	"best":       handleBest,
	"threshold":  handleThreshold,
	"pre":        handlePre,
	"crosstable": handleCrossTable,
	"events":     handleEvents,
}

func main() {
	ctx := context.Background()
	internal.InitLogging(false)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if handler, ok := commands[cmd]; ok {
		handler(ctx, os.Args[2:])
	} else {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, args []string) {
	usage()
}

// newFlagSet returns a flag set with the shared -v flag.
func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	verbose := fs.Bool("v", false, "Enable debug logging")
	return fs, verbose
}

func parseFlags(fs *flag.FlagSet, verbose *bool, args []string) {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *verbose {
		internal.InitLogging(true)
	}
}
