// Command flowctl manages document flows through the docflow API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// a missing .env file is fine
	_ = godotenv.Load()

	app := newApp(os.Stdin, os.Stdout)

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
