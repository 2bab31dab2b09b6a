package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/core"
)

var flagCategory string

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Add or remove expenses and sub-expenses",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add NAME AMOUNT",
	Short: "Add an expense",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := core.ParseAmount(args[1])
		if err != nil {
			return err
		}
		category, err := core.ParseCategory(flagCategory)
		if err != nil {
			return fmt.Errorf("%w: must be one of %v", err, core.Categories())
		}
		e, err := app.Service.AddExpense(cmd.Context(), core.Expense{Name: args[0], Amount: amount, Category: category})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s, %s)\n", e.Name, core.FormatRand(e.Amount), e.Category)
		return nil
	},
}

var expenseRmCmd = &cobra.Command{
	Use:   "rm N",
	Short: "Remove expense number N, with its sub-expenses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := position(args[0], "expense")
		if err != nil {
			return err
		}
		if err := app.Service.RemoveExpenseAt(cmd.Context(), idx); err != nil {
			return err
		}
		fmt.Printf("Removed expense #%d\n", idx+1)
		return nil
	},
}

var subCmd = &cobra.Command{
	Use:   "sub",
	Short: "Add or remove sub-expenses",
}

var subAddCmd = &cobra.Command{
	Use:   "add N NAME AMOUNT",
	Short: "Add a sub-expense to expense number N",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := position(args[0], "expense")
		if err != nil {
			return err
		}
		amount, err := core.ParseAmount(args[2])
		if err != nil {
			return err
		}
		se, err := app.Service.AddSubExpenseAt(cmd.Context(), idx, core.SubExpense{Name: args[1], Amount: amount})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s) to expense #%d\n", se.Name, core.FormatRand(se.Amount), idx+1)
		return nil
	},
}

var subRmCmd = &cobra.Command{
	Use:   "rm N M",
	Short: "Remove sub-expense M of expense N",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := position(args[0], "expense")
		if err != nil {
			return err
		}
		sub, err := position(args[1], "sub-expense")
		if err != nil {
			return err
		}
		if err := app.Service.RemoveSubExpenseAt(cmd.Context(), idx, sub); err != nil {
			return err
		}
		fmt.Printf("Removed sub-expense #%d.%d\n", idx+1, sub+1)
		return nil
	},
}

func init() {
	expenseAddCmd.Flags().StringVarP(&flagCategory, "category", "c", string(core.Other), "Expense category")
	subCmd.AddCommand(subAddCmd, subRmCmd)
	expenseCmd.AddCommand(expenseAddCmd, expenseRmCmd, subCmd)
	rootCmd.AddCommand(expenseCmd)
}
