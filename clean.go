package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"context-cvss4/cvss"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <vector>...",
		Short: "Drop Not Defined (X) metrics from vectors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range args {
				fmt.Fprintln(cmd.OutOrStdout(), cvss.TrimVector(v))
			}
			return nil
		},
	}
}
