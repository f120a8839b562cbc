package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/banshee-data/quantityfield/internal/db"
	"github.com/banshee-data/quantityfield/internal/quantityfield"
	"github.com/banshee-data/quantityfield/internal/report"
	"github.com/banshee-data/quantityfield/internal/security"
	"github.com/banshee-data/quantityfield/internal/units"
)

func baleCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "bale",
		Short: "Manage hay bales",
	}
	c.AddCommand(
		baleAddCmd(a),
		baleListCmd(a),
		baleStatsCmd(a),
		baleReportCmd(a),
		baleDeleteCmd(a),
	)
	return c
}

// parseQuery builds a store query from repeated --filter expressions.
func parseQuery(filters, order []string, limit int) (db.Query, error) {
	q := db.Query{OrderBy: order, Limit: limit}
	for _, expr := range filters {
		f, err := db.ParseFilter(expr)
		if err != nil {
			return db.Query{}, err
		}
		q.Filters = append(q.Filters, f)
	}
	return q, nil
}

func withStore(a *app, fn func(*db.DB, *db.Store) error) error {
	database, err := a.openDB()
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(database, database.Store())
}

func baleAddCmd(a *app) *cobra.Command {
	var weightInt, weightBigInt, weightDecimal string

	cmd := &cobra.Command{
		Use:   "add <name> <weight>",
		Short: "Add a bale; weights may carry a unit, e.g. \"10 ounce\"",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			b := db.HayBale{Name: args[0]}
			values := map[string]string{
				"weight":         args[1],
				"weight_int":     weightInt,
				"weight_bigint":  weightBigInt,
				"weight_decimal": weightDecimal,
			}
			for column, v := range values {
				if v == "" {
					continue
				}
				if err := b.Set(column, v); err != nil {
					return err
				}
			}
			return withStore(a, func(_ *db.DB, s *db.Store) error {
				if err := s.CreateHayBale(context.Background(), &b); err != nil {
					return err
				}
				saved, err := s.GetHayBale(context.Background(), b.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "created bale %d: %s %s\n", saved.ID, saved.Name, saved.Weight)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&weightInt, "int", "", "Weight for the integer column")
	cmd.Flags().StringVar(&weightBigInt, "bigint", "", "Weight for the big integer column")
	cmd.Flags().StringVar(&weightDecimal, "decimal", "", "Weight for the decimal column")
	return cmd
}

// showValue renders a stored value in display, or as stored when display is
// zero.
func showValue(v quantityfield.Value, display units.Unit) string {
	q, ok := v.Quantity()
	if !ok || display.IsZero() {
		return v.String()
	}
	converted, err := q.To(display)
	if err != nil {
		return v.String()
	}
	return converted.String()
}

func baleListCmd(a *app) *cobra.Command {
	var (
		filters []string
		order   []string
		limit   int
		unit    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bales, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			q, err := parseQuery(filters, order, limit)
			if err != nil {
				return err
			}
			var display units.Unit
			if unit != "" {
				if display, err = units.Default().Parse(unit); err != nil {
					return err
				}
			}
			return withStore(a, func(_ *db.DB, s *db.Store) error {
				bales, err := s.ListHayBales(context.Background(), q)
				if err != nil {
					return err
				}
				if len(bales) == 0 {
					fmt.Fprintln(c.OutOrStdout(), "(no bales found)")
					return nil
				}
				w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tWEIGHT\tINT\tBIGINT\tDECIMAL")
				for _, b := range bales {
					cells := make([]any, 0, 6)
					cells = append(cells, b.ID, b.Name)
					for _, v := range []quantityfield.Value{b.Weight, b.WeightInt, b.WeightBigInt, b.WeightDecimal} {
						cells = append(cells, showValue(v, display))
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", cells...)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter such as \"weight>=1 kilogram\" (repeatable)")
	cmd.Flags().StringSliceVarP(&order, "order", "o", nil, "Columns to order by; prefix with - for descending")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of bales")
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Show weights in this unit")
	return cmd
}

func baleStatsCmd(a *app) *cobra.Command {
	var (
		filters []string
		unit    string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise bale weights",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			q, err := parseQuery(filters, nil, 0)
			if err != nil {
				return err
			}
			display, err := a.displayUnit(unit)
			if err != nil {
				return err
			}
			return withStore(a, func(_ *db.DB, s *db.Store) error {
				summary, err := s.SummariseHayBaleWeights(context.Background(), q)
				if err != nil {
					return err
				}
				if summary.Count > 0 {
					if summary, err = convertSummary(summary, display); err != nil {
						return err
					}
				}
				fmt.Fprintln(c.OutOrStdout(), summary)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter such as \"weight>=1 kilogram\" (repeatable)")
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Report weights in this unit (default display_unit)")
	return cmd
}

func convertSummary(s db.WeightSummary, display units.Unit) (db.WeightSummary, error) {
	for _, q := range []*units.Quantity{&s.Mean, &s.StdDev, &s.Min, &s.Max, &s.Median} {
		converted, err := q.To(display)
		if err != nil {
			return db.WeightSummary{}, err
		}
		*q = converted
	}
	return s, nil
}

func baleReportCmd(a *app) *cobra.Command {
	var (
		filters   []string
		unit      string
		histogram string
		chart     string
		bins      int
		title     string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render bale weights as a histogram image and/or an HTML bar chart",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if histogram == "" && chart == "" {
				return errors.New("nothing to render: pass --histogram and/or --chart")
			}
			q, err := parseQuery(filters, nil, 0)
			if err != nil {
				return err
			}
			display, err := a.displayUnit(unit)
			if err != nil {
				return err
			}
			if bins == 0 {
				bins = a.cfg.GetHistogramBins()
			}

			var samples []report.Sample
			err = withStore(a, func(_ *db.DB, s *db.Store) error {
				bales, err := s.ListHayBales(context.Background(), q)
				if err != nil {
					return err
				}
				for _, b := range bales {
					if w, ok := b.Weight.Quantity(); ok {
						samples = append(samples, report.Sample{Label: b.Name, Weight: w})
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			for _, path := range []string{histogram, chart} {
				if path == "" {
					continue
				}
				if err := security.ValidateOutputPath(path); err != nil {
					return err
				}
			}

			out := c.OutOrStdout()
			if histogram != "" {
				if err := report.Histogram(samples, display, bins, title, histogram); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", histogram)
			}
			if chart != "" {
				f, err := os.Create(chart)
				if err != nil {
					return err
				}
				if err := report.BarChart(f, samples, display, title); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", chart)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter such as \"weight>=1 kilogram\" (repeatable)")
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Chart weights in this unit (default display_unit)")
	cmd.Flags().StringVar(&histogram, "histogram", "", "Histogram image path (.png, .svg, .pdf)")
	cmd.Flags().StringVar(&chart, "chart", "", "HTML bar chart path")
	cmd.Flags().IntVar(&bins, "bins", 0, "Histogram bins (default histogram_bins)")
	cmd.Flags().StringVar(&title, "title", "Hay bale weights", "Chart title")
	return cmd
}

func baleDeleteCmd(a *app) *cobra.Command {
	var (
		filters []string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the bales matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if len(filters) == 0 && !all {
				return errors.New("refusing to delete every bale without --all")
			}
			q, err := parseQuery(filters, nil, 0)
			if err != nil {
				return err
			}
			return withStore(a, func(_ *db.DB, s *db.Store) error {
				n, err := s.DeleteHayBales(context.Background(), q)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "deleted %d bale(s)\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter such as \"weight<1 gram\" (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Delete every bale")
	return cmd
}
