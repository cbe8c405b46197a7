package main

import (
	"os"

	"plang/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
