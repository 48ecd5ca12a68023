package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/config"
)

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	bootstrapCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the database schema and a default config file",
	Long: `Initialise the SQLite database (creating every table the engine
needs) and write a config file populated with the documented defaults
at the --config path, ready for editing.`,
	RunE: runBootstrap,
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(flagConfig); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", flagConfig)
	}

	cfg := config.Default()
	if flagDB != "" {
		cfg.Store.DBPath = flagDB
	}

	f, err := os.Create(flagConfig)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	// Opening the engine once forces every package's schema migration.
	_, db, _, err := openEngine()
	if err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return err
	}

	fmt.Printf("wrote %s, initialised %s\n", flagConfig, cfg.Store.DBPath)
	return nil
}
