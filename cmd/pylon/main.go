package main

import (
	"os"

	"pylon/cmd/pylon/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
