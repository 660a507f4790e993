// cmd/realtyctl/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "realtyctl",
		Short: "Operator tool for the realty back office",
	}

	rootCmd.AddCommand(
		migrateCmd(),
		seedAdminCmd(),
		rebuildStatsCmd(),
		rankingCmd(),
		tokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
