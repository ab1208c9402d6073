package main

import (
	"os"

	"github.com/joeaguilar/itr/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
