package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the crownlink version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("crownlink %s\n", version)
		},
	}
}
