package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/bargain"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of bargain",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bargain version %s\n", strings.TrimSpace(bargain.Version))
		},
	}
}
