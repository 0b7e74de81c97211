package main

import (
	"os"

	"github.com/Betty5562/BookNest/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
