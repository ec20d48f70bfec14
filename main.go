package main

import (
	"os"

	"github.com/ytbrief/ytbrief/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
