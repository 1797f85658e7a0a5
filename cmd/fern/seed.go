package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/pkg/repositories"
	"github.com/Ramsey-B/fern/pkg/seed"
)

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fixture categories and tools",
		Long: `Load categories and tools from a YAML fixture file. Categories are matched by name
and tools whose name already exists are skipped, so the command can be run repeatedly.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.sync()

			if file == "" {
				file = a.cfg.SeedFile
			}

			fixtures, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			seeder := seed.NewSeeder(
				repositories.NewCategoryRepository(db, a.logger),
				repositories.NewToolRepository(db, a.logger),
				a.logger,
			)
			result, err := seeder.Apply(cmd.Context(), fixtures)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "categories: %d, tools created: %d, tools skipped: %d\n",
				result.CategoriesEnsured, result.ToolsCreated, result.ToolsSkipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "fixture file (default SEED_FILE)")

	return cmd
}
