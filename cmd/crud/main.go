// Package main is the entry point for the crud CLI binary.
package main

import (
	"os"

	cli "lake-crud/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
