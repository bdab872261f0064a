package main

import (
	"os"

	"github.com/warp/debt-engine/cmd/snowball/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
