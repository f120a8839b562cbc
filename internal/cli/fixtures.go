package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/quantityfield/internal/db"
	"github.com/banshee-data/quantityfield/internal/fixture"
	"github.com/banshee-data/quantityfield/internal/security"
)

// formatFor picks the fixture format: the flag, then the file extension,
// then the configured default.
func (a *app) formatFor(flag, path string) string {
	if flag != "" {
		return flag
	}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		if _, err := fixture.Lookup(ext); err == nil {
			return ext
		}
	}
	return a.cfg.GetFixtureFormat()
}

func dumpCmd(a *app) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write every stored row as fixture objects",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			format = a.formatFor(format, output)
			if output != "" {
				if err := security.ValidateOutputPath(output); err != nil {
					return err
				}
			}
			return withStore(a, func(_ *db.DB, s *db.Store) error {
				objects, err := s.Dump(context.Background())
				if err != nil {
					return err
				}
				var w io.Writer = c.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				if err := fixture.Serialize(format, objects, w); err != nil {
					return err
				}
				if output != "" {
					fmt.Fprintf(c.ErrOrStderr(), "dumped %d object(s) to %s\n", len(objects), output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Fixture format: "+strings.Join(fixture.Formats(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func loadCmd(a *app) *cobra.Command {
	var (
		format            string
		ignoreNonexistent bool
	)

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load fixture objects; all or nothing",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			objects, err := fixture.Deserialize(a.formatFor(format, args[0]), f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			opts := fixture.Options{IgnoreNonexistent: ignoreNonexistent}

			return withStore(a, func(database *db.DB, _ *db.Store) error {
				var loaded int
				err := database.WithTx(context.Background(), func(s *db.Store) error {
					n, err := s.Load(context.Background(), objects, opts)
					loaded = n
					return err
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "Installed %d object(s) from 1 fixture(s)\n", loaded)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Fixture format (default from the file extension)")
	cmd.Flags().BoolVarP(&ignoreNonexistent, "ignorenonexistent", "i", false, "Skip fields that no longer exist on the model")
	return cmd
}
