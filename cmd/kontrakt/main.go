package main

import (
	"os"

	"github.com/msto63/kontrakt/cmd/kontrakt/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
