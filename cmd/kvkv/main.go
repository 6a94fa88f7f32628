// Command kvkv runs either side of the replicated key-value service: a
// master (client edge + two-phase-commit coordinator) or a replica
// (RESP backend + 2PC participant), selected by subcommand.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
