// Package main implements the magicphoto API server, which accepts photo
// transformation requests over HTTP and runs them on a background worker pool.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
