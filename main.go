package main

import (
	"os"

	"github.com/achrafdevl/talentbridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
