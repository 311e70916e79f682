// Package main is the Magnus Liber command-line chat client.
package main

import (
	"fmt"
	"io"
	"os"
)

// ErrorPolicy decides what happens when the client fails.
type ErrorPolicy func(err error)

// exitOnError prints the diagnostic and terminates the process.
func exitOnError(stderr io.Writer, exit func(int)) ErrorPolicy {
	return func(err error) {
		if err == nil {
			return
		}
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		exit(1)
	}
}

// main is the program entry point.
func main() {
	policy := exitOnError(os.Stderr, os.Exit)
	policy(newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute())
}
