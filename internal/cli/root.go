// Package cli implements the quantityctl command tree.
package cli

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/banshee-data/quantityfield/internal/config"
	"github.com/banshee-data/quantityfield/internal/db"
	"github.com/banshee-data/quantityfield/internal/monitoring"
	"github.com/banshee-data/quantityfield/internal/units"
)

// app carries the state resolved by the root command's flags.
type app struct {
	configPath string
	dbPath     string
	cfg        *config.Config
}

func Execute() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	a := &app{cfg: config.Empty()}

	cmd := &cobra.Command{
		Use:          "quantityctl",
		Short:        "Store, query and convert unit-aware bale weights",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "JSON configuration file")
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides database_path)")

	cmd.AddCommand(
		migrateCmd(a),
		baleCmd(a),
		dumpCmd(a),
		loadCmd(a),
		unitsCmd(a),
		versionCmd(),
	)
	return cmd
}

// setup loads the configuration, points the loggers at it and extends the
// application registry with any configured unit definitions.
func (a *app) setup() error {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if prefix := a.cfg.GetLogPrefix(); prefix != "" {
		logger := log.New(os.Stderr, prefix, log.LstdFlags)
		monitoring.SetLogger(logger.Printf)
		monitoring.SetWarner(func(format string, v ...interface{}) {
			logger.Printf("WARNING: "+format, v...)
		})
	}
	if err := loadDefinitionsOnce(a.cfg); err != nil {
		return err
	}
	if a.dbPath == "" {
		a.dbPath = a.cfg.GetDatabasePath()
	}
	return nil
}

// loadedDefinitions records the definitions files already added to the
// application registry; a registry rejects a unit defined twice. A file that
// fails to load adds nothing, so it can be fixed and loaded again.
var (
	loadedMu          sync.Mutex
	loadedDefinitions = map[string]bool{}
)

func loadDefinitionsOnce(cfg *config.Config) error {
	if cfg.UnitDefinitions == nil || *cfg.UnitDefinitions == "" {
		return nil
	}
	loadedMu.Lock()
	defer loadedMu.Unlock()
	path := *cfg.UnitDefinitions
	if loadedDefinitions[path] {
		return nil
	}
	if err := cfg.LoadUnitDefinitions(units.Default()); err != nil {
		return err
	}
	loadedDefinitions[path] = true
	return nil
}

// openDB opens the database and brings its schema up to date.
func (a *app) openDB() (*db.DB, error) {
	database, err := db.NewDB(a.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", a.dbPath, err)
	}
	return database, nil
}

func (a *app) displayUnit(flag string) (units.Unit, error) {
	name := flag
	if name == "" {
		name = a.cfg.GetDisplayUnit()
	}
	return units.Default().Parse(name)
}
