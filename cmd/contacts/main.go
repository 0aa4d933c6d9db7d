// contacts serves the contacts API and manages its storage schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "contacts",
	Short:         "Contacts API over a key-value store",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
