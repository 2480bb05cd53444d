package main

import (
	"os"

	"github.com/avelkar/subweld/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
