package main

import (
	"os"

	"github.com/wohhie/cover-letter-tool/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
