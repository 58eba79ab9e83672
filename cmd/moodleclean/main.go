// Package main is the entry point for the moodleclean CLI.
package main

import (
	"os"

	"github.com/virtual-educator/moodleclean/cmd/moodleclean/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
