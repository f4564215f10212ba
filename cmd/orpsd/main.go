package main

import (
	"fmt"
	"os"

	"onchainrps/cmd/orpsd/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "orpsd: %v\n", err)
		os.Exit(1)
	}
}
