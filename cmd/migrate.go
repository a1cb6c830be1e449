package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply raw-schema migrations to the warehouse",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		return repository.MigrateDB(db, cfg.Database.MigrationsPath, logger)
	},
}
