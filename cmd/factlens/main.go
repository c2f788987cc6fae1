package main

import (
	"fmt"
	"os"

	"github.com/factchecker/factlens/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
