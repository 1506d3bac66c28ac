package cli

import (
	"github.com/spf13/cobra"

	"github.com/rentscope/geointel/internal/infrastructure/database/postgres"
)

func newMigrateCommand() *cobra.Command {
	var migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&migrationsPath, "migrations", "file://migrations", "migrations source URL")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := postgres.Migrate(postgres.DSN(cfg.Database), migrationsPath); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := postgres.Rollback(postgres.DSN(cfg.Database), migrationsPath, steps); err != nil {
				return err
			}
			cmd.Printf("rolled back %d step(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationStatus(postgres.DSN(cfg.Database), migrationsPath)
			if err != nil {
				return err
			}
			cmd.Printf("version: %d dirty: %t\n", version, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}
