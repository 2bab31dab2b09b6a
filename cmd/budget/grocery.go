package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"budget/internal/cli"
	"budget/internal/core"
)

var groceryCmd = &cobra.Command{
	Use:   "grocery",
	Short: "Manage the grocery list",
}

var groceryAddCmd = &cobra.Command{
	Use:   "add ITEM[:QTY]...",
	Short: "Add items; quantity defaults to 1",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items := make([]core.Grocery, 0, len(args))
		for _, arg := range args {
			g, err := parseGrocery(arg)
			if err != nil {
				return err
			}
			items = append(items, g)
		}
		list, err := app.Service.AddGroceries(cmd.Context(), items...)
		if err != nil {
			return err
		}
		fmt.Print(cli.RenderGroceries(list))
		return nil
	},
}

var groceryRmCmd = &cobra.Command{
	Use:   "rm N",
	Short: "Remove item number N",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := position(args[0], "grocery")
		if err != nil {
			return err
		}
		if err := app.Service.RemoveGrocery(cmd.Context(), idx); err != nil {
			return err
		}
		fmt.Print(cli.RenderGroceries(app.Service.Groceries()))
		return nil
	},
}

var groceryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the grocery list",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Print(cli.RenderGroceries(app.Service.Groceries()))
		return nil
	},
}

// parseGrocery reads "name" or "name:qty".
func parseGrocery(arg string) (core.Grocery, error) {
	name, qty := arg, 1
	if i := strings.LastIndex(arg, ":"); i >= 0 {
		n, err := strconv.Atoi(arg[i+1:])
		if err != nil {
			return core.Grocery{}, fmt.Errorf("%w: %q", core.ErrInvalidQuantity, arg)
		}
		name, qty = arg[:i], n
	}
	return core.Grocery{Name: strings.TrimSpace(name), Quantity: qty}, nil
}

func init() {
	groceryCmd.AddCommand(groceryAddCmd, groceryRmCmd, groceryListCmd)
	rootCmd.AddCommand(groceryCmd)
}
