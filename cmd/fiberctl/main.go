package main

import (
	"os"

	"fibermeta/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
