package main

import (
	"context"
	"os"

	"github.com/geocoder89/timehub/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
