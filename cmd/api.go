package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/server"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve the read-only analytical API",
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

		return server.NewServer(db, logger).Run(cfg.Server.Port)
	},
}
