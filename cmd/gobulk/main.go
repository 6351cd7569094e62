package main

import (
	"os"

	"github.com/jzx17/gobulk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
