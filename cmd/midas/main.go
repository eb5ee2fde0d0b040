// Package main is the entry point for the midas CLI binary.
package main

import (
	"os"

	cli "github.com/collaborativebioinformatics/Adding-Datasets-to-KG/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
