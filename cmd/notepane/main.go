package main

import (
	"fmt"
	"os"

	"github.com/notepane/notepane/internal/config"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	// .env values fill in variables that are not already set.
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := newCLIApp(os.LookupEnv)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
