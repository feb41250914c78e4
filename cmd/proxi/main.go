package main

import (
	"os"

	"github.com/proxilabs/proxi/cmd/proxi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
