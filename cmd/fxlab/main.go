package main

import (
	"os"

	"github.com/veloxfx/fxlab/cmd/fxlab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
