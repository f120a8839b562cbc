package cli

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/quantityfield/internal/db"
	"github.com/banshee-data/quantityfield/internal/monitoring"
)

func migrateCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	c.AddCommand(
		migrateActionCmd(a, "up", "Apply all pending migrations", cobra.NoArgs, handleMigrateUp),
		migrateActionCmd(a, "down", "Roll back one migration", cobra.NoArgs, handleMigrateDown),
		migrateActionCmd(a, "status", "Show the migration status", cobra.NoArgs, handleMigrateStatus),
		migrateActionCmd(a, "version <version>", "Migrate up or down to a version", cobra.ExactArgs(1), handleMigrateVersion),
		migrateForceCmd(a),
	)
	return c
}

type migrateHandler func(c *cobra.Command, database *db.DB, migrationsFS fs.FS, args []string) error

// migrateActionCmd wraps a handler with a raw database connection; the
// schema is left to the handler.
func migrateActionCmd(a *app, use, short string, nargs cobra.PositionalArgs, h migrateHandler) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  nargs,
		RunE: func(c *cobra.Command, args []string) error {
			return withMigrations(a, func(database *db.DB, migrationsFS fs.FS) error {
				return h(c, database, migrationsFS, args)
			})
		},
	}
}

func withMigrations(a *app, fn func(*db.DB, fs.FS) error) error {
	migrationsFS, err := db.MigrationsFS()
	if err != nil {
		return fmt.Errorf("failed to get migrations filesystem: %w", err)
	}
	database, err := db.OpenDB(a.dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()
	return fn(database, migrationsFS)
}

func printVersion(c *cobra.Command, database *db.DB, migrationsFS fs.FS) {
	version, dirty, _ := database.MigrateVersion(migrationsFS)
	fmt.Fprintf(c.OutOrStdout(), "Current version: %d (dirty: %v)\n", version, dirty)
}

func handleMigrateUp(c *cobra.Command, database *db.DB, migrationsFS fs.FS, _ []string) error {
	monitoring.Logf("Running migrations...")
	if err := database.MigrateUp(migrationsFS); err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}
	fmt.Fprintln(c.OutOrStdout(), "✓ All migrations applied successfully")
	printVersion(c, database, migrationsFS)
	return nil
}

func handleMigrateDown(c *cobra.Command, database *db.DB, migrationsFS fs.FS, _ []string) error {
	monitoring.Logf("Rolling back one migration...")
	if err := database.MigrateDown(migrationsFS); err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}
	fmt.Fprintln(c.OutOrStdout(), "✓ Migration rolled back successfully")
	printVersion(c, database, migrationsFS)
	return nil
}

func handleMigrateStatus(c *cobra.Command, database *db.DB, migrationsFS fs.FS, _ []string) error {
	status, err := database.GetMigrationStatus(migrationsFS)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	out := c.OutOrStdout()
	fmt.Fprintln(out, "=== Migration Status ===")
	fmt.Fprintf(out, "Current version: %d\n", status.CurrentVersion)
	fmt.Fprintf(out, "Latest version: %d\n", status.LatestVersion)
	fmt.Fprintf(out, "Dirty: %v\n", status.Dirty)
	fmt.Fprintf(out, "Schema migrations table exists: %v\n", status.SchemaMigrationsExists)
	if status.Pending() {
		fmt.Fprintln(out, "Pending migrations: run quantityctl migrate up")
	}
	if status.Dirty {
		fmt.Fprintln(out, "\n⚠️  WARNING: Database is in a dirty state!")
		fmt.Fprintln(out, "A migration failed mid-execution. Inspect the database, then run: quantityctl migrate force <version>")
	}
	return nil
}

func handleMigrateVersion(c *cobra.Command, database *db.DB, migrationsFS fs.FS, args []string) error {
	target, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid version number: %s", args[0])
	}
	monitoring.Logf("Migrating to version %d...", target)
	if err := database.MigrateTo(migrationsFS, uint(target)); err != nil {
		return fmt.Errorf("migration to version %d failed: %w", target, err)
	}
	fmt.Fprintf(c.OutOrStdout(), "✓ Migrated to version %d successfully\n", target)
	return nil
}

// migrateForceCmd sets the recorded version without running anything. It
// asks for confirmation unless --yes is given.
func migrateForceCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "force <version>",
		Short: "Force the recorded migration version (recovery only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version number: %s", args[0])
			}

			out := c.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "⚠️  WARNING: Forcing migration version to %d\n", version)
				fmt.Fprintln(out, "This should only be used to recover from a dirty migration state.")
				fmt.Fprint(out, "Continue? [y/N]: ")
				var response string
				fmt.Fscanln(c.InOrStdin(), &response)
				if !strings.EqualFold(response, "y") {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}

			return withMigrations(a, func(database *db.DB, migrationsFS fs.FS) error {
				if err := database.MigrateForce(migrationsFS, version); err != nil {
					return fmt.Errorf("force migration failed: %w", err)
				}
				fmt.Fprintf(out, "✓ Migration version forced to %d\n", version)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
