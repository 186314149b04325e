package main

import (
	"context"
	"os"

	"fintrack/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
