// Package main is the entry point for the avaprobe health probe service.
package main

import (
	"context"
	"fmt"
	"os"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "avaprobe: %v\n", err)
		os.Exit(1)
	}
}
