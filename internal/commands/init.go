package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/store"
)

func newInitCommand() *cobra.Command {
	var profileName string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tally data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, absDir, profileName)
		},
	}

	cmd.Flags().StringVar(&profileName, "profile", "", "profile name (required)")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func runInit(cmd *cobra.Command, dir, profileName string) error {
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	cfg := config.Default(profileName)
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	st, err := store.Open(filepath.Join(dir, cfg.Database.File))
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer st.Close()

	p, err := st.CreateProfile(profileName)
	if err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}
	if err := st.SeedDefaults(p.ID); err != nil {
		return fmt.Errorf("seeding account types: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized tally data directory at %s for profile %q\n", dir, profileName)
	return nil
}
