package main

import (
	"os"

	"github.com/wonny/equityrank/cmd/equityrank/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
