package main

import (
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var version, force int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply the SQL migrations in DB_MIGRATION_FOLDER_PATH. By default the schema is
migrated to the latest version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.sync()

			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.PingContext(cmd.Context()); err != nil {
				return err
			}

			return a.migrator(version, force).Migrate(cmd.Context(), db)
		},
	}

	cmd.Flags().IntVar(&version, "version", -1, "target schema version (0 for latest, default DB_MIGRATION_VERSION)")
	cmd.Flags().IntVar(&force, "force", -1, "mark the schema as this version before migrating (default DB_MIGRATION_FORCE)")

	return cmd
}
