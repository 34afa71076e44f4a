package main

import (
	"os"

	"github.com/juergenlandauer/landtalk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
