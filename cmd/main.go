package main

import (
	"os"

	"github.com/adknaupp/cytometry-manager/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
