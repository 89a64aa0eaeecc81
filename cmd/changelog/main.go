package main

import (
	"os"

	"github.com/mwittgen/changelog/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
