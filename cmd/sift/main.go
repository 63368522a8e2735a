// Package main implements the sift CLI: a trainable content classifier
// with a ban-line-gated memory store.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
