package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/core"
)

var incomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Add or remove additional income",
}

var incomeAddCmd = &cobra.Command{
	Use:   "add SOURCE AMOUNT",
	Short: "Add an income",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := core.ParseAmount(args[1])
		if err != nil {
			return err
		}
		in, err := app.Service.AddIncome(cmd.Context(), core.Income{Source: args[0], Amount: amount})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s)\n", in.Source, core.FormatRand(in.Amount))
		return nil
	},
}

var incomeRmCmd = &cobra.Command{
	Use:   "rm N",
	Short: "Remove income number N",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := position(args[0], "income")
		if err != nil {
			return err
		}
		if err := app.Service.RemoveIncomeAt(cmd.Context(), idx); err != nil {
			return err
		}
		fmt.Printf("Removed income #%d\n", idx+1)
		return nil
	},
}

func init() {
	incomeCmd.AddCommand(incomeAddCmd, incomeRmCmd)
	rootCmd.AddCommand(incomeCmd)
}
