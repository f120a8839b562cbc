package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/quantityfield/internal/units"
)

func unitsCmd(_ *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "units",
		Short: "Inspect the application unit registry",
	}
	c.AddCommand(unitsConvertCmd(), unitsShowCmd(), unitsListCmd())
	return c
}

func unitsConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "convert <quantity> <unit>",
		Short:   "Convert a quantity, e.g. convert \"10 ounce\" gram",
		Args:    cobra.ExactArgs(2),
		Example: "  quantityctl units convert \"0.5 kilogram\" ounce",
		RunE: func(c *cobra.Command, args []string) error {
			q, err := units.Default().ParseQuantity(args[0])
			if err != nil {
				return err
			}
			converted, err := q.ToName(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "%s = %s\n", q, converted)
			return nil
		},
	}
}

func unitsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <unit>",
		Short: "Show a unit's symbol and dimensionality",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			u, err := units.Default().Parse(args[0])
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			fmt.Fprintf(out, "name: %s\n", u.Name())
			if u.Symbol() != "" {
				fmt.Fprintf(out, "symbol: %s\n", u.Symbol())
			}
			fmt.Fprintf(out, "dimensionality: %s\n", u.Dimensionality())
			return nil
		},
	}
}

func unitsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the defined unit names",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			fmt.Fprintln(c.OutOrStdout(), strings.Join(units.Default().Names(), "\n"))
			return nil
		},
	}
}
