package main

import (
	"fmt"

	"github.com/buy-ready-tracker/internal/status"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <mcs> <fgt> <ft> <wt>",
		Short: "Print the overall status of four stage statuses",
		Long: `Prints NONE, PENDING, PASSED or PROCESSING for the given MCS, FGT, FT
and WT statuses. Pass "" for an empty stage.`,
		Args: cobra.ExactArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), status.Classify(args[0], args[1], args[2], args[3]))
		},
	}
}
