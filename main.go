package main

import (
	"os"

	"github.com/temirov/checkoutsync/cmd/cli"
)

// main executes the checkout-sync command-line application.
func main() {
	os.Exit(cli.Run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
