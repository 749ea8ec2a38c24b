package main

import (
	"context"
	"fmt"

	"github.com/songhub/backend/internal/models"
	"github.com/songhub/backend/internal/services"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export the catalog to the private backup storage and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l := bootstrap()
		ctx := context.Background()

		db, err := models.InitDB(cfg, l)
		if err != nil {
			return err
		}
		if err := models.Migrate(db); err != nil {
			return err
		}
		store, err := newBackupStore(cfg, l)
		if err != nil {
			return err
		}

		catalog := services.NewCatalogService(db, l.With("component", "catalog"))
		backups := services.NewBackupService(db, catalog, store, l.With("component", "backups"))

		backup, err := backups.CreateBackup(ctx, models.BackupTypeManual, "cli")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), backup.Location)
		return nil
	},
}
