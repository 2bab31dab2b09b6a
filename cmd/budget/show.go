package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/cli"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show salary, expenses, income, totals and analysis",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the snapshot as JSON")
	rootCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, _ []string) error {
	snap := app.Service.Snapshot()
	if flagJSON {
		return printJSON(snap)
	}
	fmt.Println()
	fmt.Print(cli.RenderSnapshot(snap))
	return nil
}
