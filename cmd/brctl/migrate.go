package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newMigrateCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, *envFile, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, *envFile, false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "to <version>",
		Short: "Migrate up or down to a specific schema version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			cfg, db, _, err := openStore(*envFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.MigrateToVersion(cfg.Database.MigrationsDir(), uint(version)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
			return nil
		},
	})
	return cmd
}

func runMigrate(cmd *cobra.Command, envFile string, up bool) error {
	cfg, db, _, err := openStore(envFile, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer db.Close()

	dir := cfg.Database.MigrationsDir()
	if up {
		if err := db.RunMigrations(dir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied from %s\n", dir)
		return nil
	}

	if err := db.MigrateDown(dir); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Last migration rolled back")
	return nil
}
