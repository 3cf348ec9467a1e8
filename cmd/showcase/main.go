// Package main provides the showcase CLI, the operator's admin surface for
// the storefront content store.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	root := newRootCmd()
	err := root.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(exitCode(err))
}
