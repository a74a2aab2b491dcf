package main

import (
	"os"

	"github.com/musclesugar/podcast-ai-pipeline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
