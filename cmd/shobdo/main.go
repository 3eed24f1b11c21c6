package main

import (
	"os"

	"shobdo-cli/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
