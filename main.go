package main

import (
	"os"

	"github.com/benn-herrera/cffigen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
