package main

import (
	"os"

	"github.com/soundprediction/kgcurate/cmd/kgcurate"
)

func main() {
	if err := kgcurate.Execute(); err != nil {
		os.Exit(1)
	}
}
