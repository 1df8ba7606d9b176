package main

import (
	"github.com/foomo/docsite/cmd"
)

func main() {
	cmd.Execute()
}
