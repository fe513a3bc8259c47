package main

import (
	"github.com/stratus-cloud/stratus/cmd/stratus/cmd"
)

func main() {
	cmd.Execute()
}
