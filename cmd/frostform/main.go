// Package main is the entry point for the frostform CLI binary.
package main

import (
	"os"

	cli "frostform/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
