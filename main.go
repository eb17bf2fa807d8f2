package main

import (
	"os"

	"github.com/confgen/confgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
