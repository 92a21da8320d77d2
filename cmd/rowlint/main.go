package main

import (
	"os"

	"github.com/rowlint/rowlint/cmd/rowlint/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
