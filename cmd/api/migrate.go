package main

import (
	"github.com/songhub/backend/internal/models"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l := bootstrap()

		db, err := models.InitDB(cfg, l)
		if err != nil {
			return err
		}
		if err := models.Migrate(db); err != nil {
			return err
		}
		l.Info("migrations applied", "driver", cfg.DBDriver)
		return nil
	},
}
