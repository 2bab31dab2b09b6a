package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/cli"
	"budget/internal/core"
	"budget/internal/tax"
)

var (
	flagPension    float64
	flagTravel     float64
	flagAnnual     bool
	flagWriteTable string
)

var taxCmd = &cobra.Command{
	Use:   "tax",
	Short: "Tax calculations that do not change the ledger",
}

var taxNetCmd = &cobra.Command{
	Use:   "net GROSS",
	Short: "Compute tax, UIF and net salary for a gross salary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gross, err := core.ParseSalary(args[0])
		if err != nil {
			return err
		}
		bracket := core.Under65
		if flagAgeBracket != "" {
			if bracket, err = core.ParseAgeBracket(flagAgeBracket); err != nil {
				return err
			}
		}

		var opts []tax.Option
		if cmd.Flags().Changed("pension") {
			opts = append(opts, tax.WithPension(flagPension))
		}
		if cmd.Flags().Changed("travel") {
			opts = append(opts, tax.WithTravelAllowance(flagTravel))
		}
		if flagAnnual {
			opts = append(opts, tax.Annual())
		}

		b := app.Service.NetSalary(gross, bracket, opts...)
		if flagJSON {
			return printJSON(b)
		}
		fmt.Print(cli.RenderBreakdown(b))
		return nil
	},
}

var taxTableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the tax table in use",
	Long: `Print the tax table in use.

With --write the table is saved as TOML instead. Edit the file and point
TAX_TABLE_FILE at it to change brackets, rebates or the UIF cap.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if flagWriteTable != "" {
			if err := tax.WriteTable(flagWriteTable, app.Table); err != nil {
				return err
			}
			fmt.Printf("Tax table written to %s\n", flagWriteTable)
			return nil
		}
		if flagJSON {
			return printJSON(app.Table)
		}
		fmt.Print(cli.RenderTaxTable(app.Table))
		return nil
	},
}

func init() {
	taxNetCmd.Flags().StringVar(&flagAgeBracket, "age-bracket", "", "Age bracket: under65, 65to74 or 75andOver")
	taxNetCmd.Flags().Float64Var(&flagPension, "pension", 0, "Pension contribution, same period as GROSS")
	taxNetCmd.Flags().Float64Var(&flagTravel, "travel", 0, "Travel allowance, same period as GROSS")
	taxNetCmd.Flags().BoolVar(&flagAnnual, "annual", false, "GROSS is an annual figure")
	taxTableCmd.Flags().StringVar(&flagWriteTable, "write", "", "Write the table as TOML to this file")
	taxCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON")

	taxCmd.AddCommand(taxNetCmd, taxTableCmd)
	rootCmd.AddCommand(taxCmd)
}
