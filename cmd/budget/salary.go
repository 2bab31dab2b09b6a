package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/cli"
	"budget/internal/core"
)

var (
	flagNet        bool
	flagTax        bool
	flagAgeBracket string
)

var salaryCmd = &cobra.Command{
	Use:   "salary",
	Short: "Set the monthly salary",
}

var salarySetCmd = &cobra.Command{
	Use:   "set AMOUNT",
	Short: "Set the gross salary, or the net salary with --net",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := core.ParseSalary(args[0])
		if err != nil {
			return err
		}
		b, err := app.Service.UpdateSalary(cmd.Context(), amount, flagNet)
		if err != nil {
			return err
		}
		fmt.Print(cli.RenderBreakdown(b))
		return nil
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Change the tax toggle and age bracket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var enabled *bool
		if cmd.Flags().Changed("tax") {
			enabled = &flagTax
		}
		var bracket core.AgeBracket
		if cmd.Flags().Changed("age-bracket") {
			b, err := core.ParseAgeBracket(flagAgeBracket)
			if err != nil {
				return fmt.Errorf("%w: must be under65, 65to74 or 75andOver", err)
			}
			bracket = b
		}
		if err := app.Service.SetTaxMode(cmd.Context(), enabled, bracket); err != nil {
			return err
		}
		s := app.Service.Snapshot()
		fmt.Printf("Tax %s, age bracket %s, net salary %s\n", onOff(s.TaxEnabled), s.Salary.AgeBracket, core.FormatRand(s.Salary.NetSalary))
		return nil
	},
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func init() {
	salarySetCmd.Flags().BoolVar(&flagNet, "net", false, "AMOUNT is the desired net salary; the gross is solved for")
	salaryCmd.AddCommand(salarySetCmd)

	settingsCmd.Flags().BoolVar(&flagTax, "tax", true, "Count net salary (true) or gross salary (false) as income")
	settingsCmd.Flags().StringVar(&flagAgeBracket, "age-bracket", "", "Age bracket: under65, 65to74 or 75andOver")

	rootCmd.AddCommand(salaryCmd, settingsCmd)
}
