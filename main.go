package main

import (
	"os"

	"github.com/a4blue/sarb/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
