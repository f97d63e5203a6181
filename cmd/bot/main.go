package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	// Failures are logged; the exit status is always 0.
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
}
