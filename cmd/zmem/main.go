package main

import (
	"os"

	"github.com/zmem-project/zmem/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
