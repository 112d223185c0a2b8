package main

import (
	"fmt"
	"os"

	"github.com/temirov/dumpcode/internal/cli"
)

// main is the entry point for the dumpcode command.
func main() {
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		fmt.Fprintln(os.Stderr, "Error: "+applicationExecutionError.Error())
		os.Exit(1)
	}
}
