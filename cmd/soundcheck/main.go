// Command soundcheck verifies the festival listing contract: payload
// schema, display fallbacks, canonical ordering, page states, and the
// latency gate.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/soundcheck/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
