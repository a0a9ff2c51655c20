// file: main.go
// version: 2.0.0
// guid: 3d9e1b57-0a6c-4f82-b4e7-c5f2a8d1069e

package main

import (
	"os"

	"github.com/jdfalk/art-roulette/cmd"
)

func main() {
	// fang prints the error itself.
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
