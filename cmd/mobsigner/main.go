package main

import (
	"os"

	"mobsigner/cmd/mobsigner/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
